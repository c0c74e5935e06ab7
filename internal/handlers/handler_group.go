package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/splitclub/split_expense_app/internal/apperrors"
	portssvc "github.com/splitclub/split_expense_app/internal/core/ports/services"
	"github.com/splitclub/split_expense_app/internal/dto"
	"github.com/splitclub/split_expense_app/internal/middleware"
)

// groupHandler handles HTTP requests related to groups.
type groupHandler struct {
	groupService portssvc.GroupSvcFacade
}

// newGroupHandler creates a new groupHandler.
func newGroupHandler(gs portssvc.GroupSvcFacade) *groupHandler {
	return &groupHandler{
		groupService: gs,
	}
}

// registerGroupRoutes registers all group-related routes.
func registerGroupRoutes(rg *gin.RouterGroup, groupService portssvc.GroupSvcFacade) {
	h := newGroupHandler(groupService)

	groups := rg.Group("/groups")
	{
		groups.POST("", h.createGroup)
		groups.GET("", h.listGroups)
		groups.GET("/:groupID", h.getGroup)
		groups.POST("/:groupID/members/:userID", h.addMember)
		groups.DELETE("/:groupID/members/:userID", h.removeMember)
	}
}

// createGroup godoc
// @Summary Create a new group
// @Description Creates a group; the creator becomes its first member
// @Tags groups
// @Accept  json
// @Produce  json
// @Param   group body dto.CreateGroupRequest true "Group details"
// @Success 201 {object} dto.GroupResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Creator not found"
// @Failure 409 {object} map[string]string "Group ID already exists"
// @Failure 500 {object} map[string]string "Failed to create group"
// @Router /groups [post]
func (h *groupHandler) createGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	group, err := h.groupService.CreateGroup(c.Request.Context(), req)
	if err != nil {
		logger.Error("Failed to create group", slog.String("error", err.Error()))
		if errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "Group ID already exists"})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Creator not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
		}
		return
	}

	logger.Info("Group created successfully", slog.String("group_id", group.GroupID))
	c.JSON(http.StatusCreated, dto.ToGroupResponse(group))
}

// listGroups godoc
// @Summary List groups
// @Description Retrieves a paginated list of groups with their members
// @Tags groups
// @Produce  json
// @Param   limit query int false "Max results" default(20)
// @Param   offset query int false "Results offset" default(0)
// @Success 200 {object} dto.ListGroupsResponse
// @Failure 500 {object} map[string]string "Failed to list groups"
// @Router /groups [get]
func (h *groupHandler) listGroups(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListGroupsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	groups, err := h.groupService.ListGroups(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list groups", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list groups"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListGroupsResponse(groups))
}

// getGroup godoc
// @Summary Get a group by ID
// @Description Retrieves a group with its member list
// @Tags groups
// @Produce  json
// @Param   groupID path string true "Group ID"
// @Success 200 {object} dto.GroupResponse
// @Failure 404 {object} map[string]string "Group not found"
// @Failure 500 {object} map[string]string "Failed to retrieve group"
// @Router /groups/{groupID} [get]
func (h *groupHandler) getGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("groupID")

	group, err := h.groupService.GetGroupByID(c.Request.Context(), groupID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
			return
		}
		logger.Error("Failed to get group", slog.String("group_id", groupID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve group"})
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupResponse(group))
}

// addMember godoc
// @Summary Add a member to a group
// @Description Adds an existing user to a group; adding a member twice is a no-op
// @Tags groups
// @Produce  json
// @Param   groupID path string true "Group ID"
// @Param   userID path string true "User ID"
// @Success 200 {object} dto.GroupResponse
// @Failure 404 {object} map[string]string "Group or user not found"
// @Failure 500 {object} map[string]string "Failed to add member"
// @Router /groups/{groupID}/members/{userID} [post]
func (h *groupHandler) addMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("groupID")
	userID := c.Param("userID")

	group, err := h.groupService.AddMember(c.Request.Context(), groupID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group or user not found"})
			return
		}
		logger.Error("Failed to add group member", slog.String("group_id", groupID), slog.String("user_id", userID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupResponse(group))
}

// removeMember godoc
// @Summary Remove a member from a group
// @Description Removes a user from a group; past expenses are unaffected
// @Tags groups
// @Produce  json
// @Param   groupID path string true "Group ID"
// @Param   userID path string true "User ID"
// @Success 200 {object} dto.GroupResponse
// @Failure 404 {object} map[string]string "Group not found"
// @Failure 500 {object} map[string]string "Failed to remove member"
// @Router /groups/{groupID}/members/{userID} [delete]
func (h *groupHandler) removeMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("groupID")
	userID := c.Param("userID")

	group, err := h.groupService.RemoveMember(c.Request.Context(), groupID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
			return
		}
		logger.Error("Failed to remove group member", slog.String("group_id", groupID), slog.String("user_id", userID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupResponse(group))
}
