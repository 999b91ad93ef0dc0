package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"diary-backend/internal/middleware"
	"diary-backend/internal/service"
	"diary-backend/pkg/utils"
)

type MemberHandler struct {
	memberService *service.MemberService
	log           *logrus.Entry
}

func NewMemberHandler(memberService *service.MemberService, log *logrus.Entry) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
		log:           log,
	}
}

// Me returns the authenticated member
func (h *MemberHandler) Me(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	me, err := h.memberService.Me(c.Request.Context(), principal)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Member not found")
			return
		}
		h.log.WithError(err).Error("failed to load member")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch member")
		return
	}

	utils.SuccessResponse(c, me)
}

// List returns a page of members
func (h *MemberHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(service.DefaultPageSize)))

	result, err := h.memberService.List(c.Request.Context(), page, size)
	if err != nil {
		h.log.WithError(err).Error("failed to list members")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch members")
		return
	}

	utils.SuccessResponse(c, result)
}

// Delete removes a member and revokes all of their refresh tokens
func (h *MemberHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid member ID")
		return
	}

	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.memberService.Delete(c.Request.Context(), principal, uint(id)); err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Member not found")
			return
		}
		h.log.WithError(err).Error("failed to delete member")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to delete member")
		return
	}

	utils.MessageResponse(c, "Member deleted successfully")
}
