package user

import (
	"net/http"

	"github.com/DhavalSuthar-24/padel/internal/common"
	"github.com/DhavalSuthar-24/padel/pkg/responses"
	"github.com/gin-gonic/gin"
)

// The controller cannot import internal/middleware (which imports this
// package), so it reads the id set by AuthMiddleware under the same key.
const authUserIDKey = "auth_user_id"

type UserController struct {
	repo Repository
}

func NewUserController(repo Repository) *UserController {
	return &UserController{repo: repo}
}

func currentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(authUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// @Summary      Current user profile
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} responses.SuccessResponse{data=Profile}
// @Failure      401 {object} responses.ErrorResponse
// @Router       /users/me [get]
func (uc *UserController) GetMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		responses.Unauthorized(c, "")
		return
	}
	u, err := uc.repo.FindByID(c.Request.Context(), userID)
	if err != nil {
		responses.FromError(c, err)
		return
	}
	if u == nil {
		responses.FromError(c, ErrUserNotFound)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Profile retrieved", u.ToProfile())
}

// @Summary      Update current user profile
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateProfileRequest true "Profile fields"
// @Success      200 {object} responses.SuccessResponse{data=Profile}
// @Failure      400 {object} responses.ErrorResponse
// @Router       /users/me [put]
func (uc *UserController) UpdateMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		responses.Unauthorized(c, "")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationError(c, err)
		return
	}

	fields := make(map[string]interface{})
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.City != nil {
		fields["city"] = *req.City
	}
	if req.ProfilePicture != nil {
		fields["profile_picture"] = *req.ProfilePicture
	}

	ctx := c.Request.Context()
	if err := uc.repo.UpdateProfile(ctx, userID, fields); err != nil {
		responses.FromError(c, err)
		return
	}
	u, err := uc.repo.FindByID(ctx, userID)
	if err != nil || u == nil {
		responses.FromError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Profile updated", u.ToProfile())
}

// @Summary      Get a user
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Success      200 {object} responses.SuccessResponse{data=Profile}
// @Failure      404 {object} responses.ErrorResponse
// @Router       /users/{id} [get]
func (uc *UserController) GetUser(c *gin.Context) {
	id, ok := common.ParseIDParam(c, "id")
	if !ok {
		responses.BadRequest(c, "Invalid user ID")
		return
	}
	u, err := uc.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		responses.FromError(c, err)
		return
	}
	if u == nil {
		responses.FromError(c, ErrUserNotFound)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "User retrieved", u.ToPublicProfile())
}

// @Summary      Ranking
// @Description  Users ordered by skill score, best first.
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int false "Page"
// @Param        page_size query int false "Page size"
// @Success      200 {object} responses.PaginatedResponse{data=[]Profile}
// @Router       /users [get]
func (uc *UserController) ListUsers(c *gin.Context) {
	page, pageSize := common.GetPagination(c)
	users, total, err := uc.repo.ListByScore(c.Request.Context(), page, pageSize)
	if err != nil {
		responses.FromError(c, err)
		return
	}
	profiles := make([]Profile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].ToPublicProfile())
	}
	responses.SendPaginated(c, http.StatusOK, "", profiles, total, page, pageSize)
}
