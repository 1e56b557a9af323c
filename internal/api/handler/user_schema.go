package handler

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/userdeck/user-directory-api/internal/core/domain"
	"github.com/userdeck/user-directory-api/internal/core/ports"
)

// userResponse is the public projection of a user record. The password
// hash has no field here, so it cannot leak on any response path.
type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	AvatarURL *string   `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserResponses(users []domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out
}

type listUsersResponse struct {
	Items []userResponse `json:"items"`
	Meta  ports.ListMeta `json:"meta"`
}

type listUsersQuery struct {
	Page           int    `query:"page"           validate:"min=1"`
	PerPage        int    `query:"perPage"        validate:"min=1,max=100"`
	OrderBy        string `query:"orderBy"        validate:"oneof=createdAt name email updatedAt"`
	OrderDirection string `query:"orderDirection" validate:"oneof=asc desc"`
	Search         string `query:"search"         validate:"omitempty,max=100"`
	Role           string `query:"role"`
}

// parseListQuery normalizes and validates the GET /users query string,
// applying defaults for everything absent. An empty search is treated as
// no search at all.
func parseListQuery(c echo.Context) (ports.ListUsersInput, error) {
	q := listUsersQuery{
		Page:           1,
		PerPage:        10,
		OrderBy:        "createdAt",
		OrderDirection: "desc",
	}

	var issues []domain.Issue
	readIntParam(c, "page", &q.Page, &issues)
	readIntParam(c, "perPage", &q.PerPage, &issues)
	if v := c.QueryParam("orderBy"); v != "" {
		q.OrderBy = v
	}
	if v := c.QueryParam("orderDirection"); v != "" {
		q.OrderDirection = v
	}
	q.Search = strings.TrimSpace(c.QueryParam("search"))
	q.Role = strings.TrimSpace(c.QueryParam("role"))

	if err := c.Validate(&q); err != nil {
		ve := asValidationError(err)
		if ve == nil {
			return ports.ListUsersInput{}, err
		}
		issues = append(issues, ve.Issues...)
	}
	if len(issues) > 0 {
		return ports.ListUsersInput{}, domain.NewValidationError(issues...)
	}

	return ports.ListUsersInput{
		Page:           q.Page,
		PerPage:        q.PerPage,
		OrderBy:        q.OrderBy,
		OrderDirection: q.OrderDirection,
		Search:         q.Search,
		Role:           q.Role,
	}, nil
}

func readIntParam(c echo.Context, name string, dst *int, issues *[]domain.Issue) {
	raw := c.QueryParam(name)
	if raw == "" {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*issues = append(*issues, domain.Issue{
			Path:    name,
			Message: name + " must be an integer",
			Code:    "invalid_type",
		})
		return
	}
	*dst = v
}

// parseIDParam rejects a syntactically invalid UUID before any lookup, so
// a malformed id is a validation failure rather than a not-found.
func parseIDParam(c echo.Context) (string, error) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", domain.NewValidationError(domain.Issue{
			Path:    "id",
			Message: "id must be a valid UUID",
			Code:    "invalid_uuid",
		})
	}
	return id, nil
}

type createUserRequest struct {
	Name      string  `json:"name"      validate:"required"`
	Email     string  `json:"email"     validate:"required,email"`
	Password  string  `json:"password"  validate:"required,min=8,maxbytes=72"`
	Role      string  `json:"role"      validate:"omitempty,oneof=admin user"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url"`
}

func (r *createUserRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	if r.AvatarURL != nil {
		trimmed := strings.TrimSpace(*r.AvatarURL)
		r.AvatarURL = &trimmed
	}
}

// decodeCreateUser applies the strict create schema: unknown JSON fields
// are rejected so nothing can be injected into the persisted record.
func decodeCreateUser(c echo.Context) (*createUserRequest, error) {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()

	var req createUserRequest
	if err := dec.Decode(&req); err != nil {
		return nil, decodeError(err)
	}
	req.normalize()

	var issues []domain.Issue
	if req.AvatarURL != nil && *req.AvatarURL == "" {
		issues = append(issues, urlIssue("avatarUrl"))
	}
	if err := c.Validate(&req); err != nil {
		if ve := asValidationError(err); ve != nil {
			issues = append(issues, ve.Issues...)
		} else {
			return nil, err
		}
	}
	if len(issues) > 0 {
		return nil, domain.NewValidationError(issues...)
	}
	return &req, nil
}

type updateUserRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Password  *string `json:"password"  validate:"omitempty,min=8,maxbytes=72"`
	Role      *string `json:"role"      validate:"omitempty,oneof=admin user"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url"`
}

var updateUserFields = map[string]struct{}{
	"name":      {},
	"email":     {},
	"password":  {},
	"role":      {},
	"avatarUrl": {},
}

// decodeUpdateUser parses the partial update body. It decodes into a raw
// key map first to tell three cases apart that a plain struct cannot:
// a field that is absent, a field set to null, and an empty body.
func decodeUpdateUser(c echo.Context) (ports.UpdateUserInput, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return ports.UpdateUserInput{}, decodeError(err)
	}

	var issues []domain.Issue
	for key := range raw {
		if _, ok := updateUserFields[key]; !ok {
			issues = append(issues, unknownFieldIssue(key))
		}
	}
	if len(raw) == 0 {
		issues = append(issues, domain.Issue{
			Message: "at least one field must be provided",
			Code:    "too_small",
		})
	}

	var req updateUserRequest
	clearAvatar := false
	readStringField(raw, "name", &req.Name, &issues)
	readStringField(raw, "email", &req.Email, &issues)
	readStringField(raw, "password", &req.Password, &issues)
	readStringField(raw, "role", &req.Role, &issues)
	if msg, ok := raw["avatarUrl"]; ok {
		if string(msg) == "null" {
			clearAvatar = true
		} else {
			readStringField(raw, "avatarUrl", &req.AvatarURL, &issues)
		}
	}

	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if req.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &normalized
		if normalized == "" {
			issues = append(issues, domain.Issue{Path: "email", Message: "email must be a valid email", Code: "email"})
		}
	}
	if req.Role != nil {
		normalized := strings.ToLower(strings.TrimSpace(*req.Role))
		req.Role = &normalized
		if normalized == "" {
			issues = append(issues, domain.Issue{Path: "role", Message: "role must be one of: admin user", Code: "oneof"})
		}
	}
	if req.Password != nil && *req.Password == "" {
		issues = append(issues, domain.Issue{Path: "password", Message: "password must be at least 8", Code: "min"})
	}
	if req.AvatarURL != nil {
		trimmed := strings.TrimSpace(*req.AvatarURL)
		req.AvatarURL = &trimmed
		if trimmed == "" {
			issues = append(issues, urlIssue("avatarUrl"))
		}
	}

	if err := c.Validate(&req); err != nil {
		if ve := asValidationError(err); ve != nil {
			issues = append(issues, ve.Issues...)
		} else {
			return ports.UpdateUserInput{}, err
		}
	}
	if len(issues) > 0 {
		return ports.UpdateUserInput{}, domain.NewValidationError(issues...)
	}

	return ports.UpdateUserInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		AvatarURL:   req.AvatarURL,
		ClearAvatar: clearAvatar,
	}, nil
}

func readStringField(raw map[string]json.RawMessage, key string, dst **string, issues *[]domain.Issue) {
	msg, ok := raw[key]
	if !ok {
		return
	}
	var v string
	if err := json.Unmarshal(msg, &v); err != nil || string(msg) == "null" {
		*issues = append(*issues, domain.Issue{
			Path:    key,
			Message: key + " must be a string",
			Code:    "invalid_type",
		})
		return
	}
	*dst = &v
}

func decodeError(err error) error {
	msg := err.Error()
	if idx := strings.Index(msg, "unknown field "); idx >= 0 {
		field := strings.Trim(msg[idx+len("unknown field "):], `"`)
		return domain.NewValidationError(unknownFieldIssue(field))
	}
	return domain.NewValidationError(domain.Issue{
		Message: "invalid JSON body",
		Code:    "invalid_body",
	})
}

func unknownFieldIssue(field string) domain.Issue {
	return domain.Issue{
		Path:    field,
		Message: "unrecognized field: " + field,
		Code:    "unrecognized_keys",
	}
}

func urlIssue(field string) domain.Issue {
	return domain.Issue{
		Path:    field,
		Message: field + " must be a valid URL",
		Code:    "url",
	}
}

func asValidationError(err error) *domain.ValidationError {
	ve, ok := err.(*domain.ValidationError)
	if !ok {
		return nil
	}
	return ve
}
