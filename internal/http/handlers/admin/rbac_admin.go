package admin

import (
	"errors"
	"strconv"

	"github.com/shopora/internal/authz"
	"github.com/shopora/internal/http/response"

	"github.com/gin-gonic/gin"
)

// RoleView 角色及其策略
type RoleView struct {
	Role     string         `json:"role"`
	Policies []authz.Policy `json:"policies"`
}

// ListRoles 列出预置角色与各自策略
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "role list failed", err)
		return
	}

	views := make([]RoleView, 0, len(roles))
	for _, role := range roles {
		policies, policyErr := h.AuthzService.GetRolePolicies(role)
		if policyErr != nil {
			respondError(c, response.CodeInternal, "role list failed", policyErr)
			return
		}
		views = append(views, RoleView{Role: role, Policies: policies})
	}

	response.Success(c, views)
}

// GetAdminRoles 查询指定管理员的角色
func (h *Handler) GetAdminRoles(c *gin.Context) {
	targetID, ok := parseAdminParam(c)
	if !ok {
		return
	}

	roles, err := h.AuthzService.GetAdminRoles(targetID)
	if err != nil {
		respondError(c, response.CodeInternal, "admin roles fetch failed", err)
		return
	}

	response.Success(c, gin.H{"admin_id": targetID, "roles": roles})
}

// SetAdminRolesRequest 角色分配请求
type SetAdminRolesRequest struct {
	Roles []string `json:"roles"`
}

// SetAdminRoles 覆盖分配管理员角色（仅超级管理员）
func (h *Handler) SetAdminRoles(c *gin.Context) {
	if !requireSuperAdmin(c) {
		return
	}

	targetID, ok := parseAdminParam(c)
	if !ok {
		return
	}

	target, err := h.AdminRepo.GetByID(targetID)
	if err != nil {
		respondError(c, response.CodeInternal, "admin fetch failed", err)
		return
	}
	if target == nil {
		respondError(c, response.CodeNotFound, "admin not found", nil)
		return
	}

	var req SetAdminRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.AuthzService.SetAdminRoles(targetID, req.Roles); err != nil {
		if errors.Is(err, authz.ErrUnknownRole) {
			respondError(c, response.CodeBadRequest, "unknown role", nil)
			return
		}
		respondError(c, response.CodeInternal, "admin roles update failed", err)
		return
	}

	roles, err := h.AuthzService.GetAdminRoles(targetID)
	if err != nil {
		respondError(c, response.CodeInternal, "admin roles fetch failed", err)
		return
	}

	response.Success(c, gin.H{"admin_id": targetID, "roles": roles})
}

func parseAdminParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid admin id", nil)
		return 0, false
	}
	return uint(id), true
}

func requireSuperAdmin(c *gin.Context) bool {
	value, exists := c.Get("admin_is_super")
	if isSuper, _ := value.(bool); exists && isSuper {
		return true
	}
	respondError(c, response.CodeForbidden, "forbidden", nil)
	return false
}
