package auth

import (
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// UsersController exposes role-gated CRUD on user records. Listing is
// open to any authenticated caller; single-record reads and mutations
// require the caller to be an admin or the record's owner.
type UsersController struct {
	Logger Logger
	Repo   RepositoryManager
}

// NewUsersController builds the controller
func NewUsersController(repo RepositoryManager) *UsersController {
	if repo == nil {
		panic("Missing RepositoryManager in users controller...")
	}
	return &UsersController{
		Logger: defLogger{},
		Repo:   repo,
	}
}

// WithLogger overrides the controller logger
func (u *UsersController) WithLogger(logger Logger) *UsersController {
	if logger != nil {
		u.Logger = logger
	}
	return u
}

// UpdateUserRequest carries the mutable profile fields. Role changes are
// accepted from admins only; everything secret (password hash, codes) is
// out of reach of this endpoint.
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Image *string `json:"image"`
	Role  *string `json:"role"`
}

func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Role, validation.By(func(value any) error {
			role, _ := value.(*string)
			if role == nil {
				return nil
			}
			if _, ok := ParseRole(*role); !ok {
				return goerrors.New("unknown role", goerrors.CategoryValidation)
			}
			return nil
		})),
	)
}

// List handles GET /user
func (u *UsersController) List(c *fiber.Ctx) error {
	records, err := u.Repo.Users().List(c.UserContext())
	if err != nil {
		return RespondError(c, err, u.Logger)
	}

	public := make([]*PublicUser, 0, len(records))
	for _, record := range records {
		public = append(public, record.Public())
	}

	return RespondOK(c, public)
}

// Show handles GET /user/:id
func (u *UsersController) Show(c *fiber.Ctx) error {
	id, err := u.authorizedRecordID(c)
	if err != nil {
		return RespondError(c, err, u.Logger)
	}

	record, err := u.Repo.Users().GetByID(c.UserContext(), id)
	if err != nil {
		return RespondError(c, err, u.Logger)
	}

	return RespondOK(c, record.Public())
}

// Update handles PUT /user/:id
func (u *UsersController) Update(c *fiber.Ctx) error {
	id, err := u.authorizedRecordID(c)
	if err != nil {
		return RespondError(c, err, u.Logger)
	}

	payload := new(UpdateUserRequest)
	if err := c.BodyParser(payload); err != nil {
		return RespondError(c, goerrors.New("Invalid request body", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest), u.Logger)
	}
	if err := payload.Validate(); err != nil {
		return RespondError(c, goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
			WithCode(goerrors.CodeBadRequest), u.Logger)
	}

	record, err := u.Repo.Users().GetByID(c.UserContext(), id)
	if err != nil {
		return RespondError(c, err, u.Logger)
	}

	columns := []string{}
	if payload.Name != nil {
		record.Name = *payload.Name
		columns = append(columns, "name")
	}
	if payload.Image != nil {
		record.Image = *payload.Image
		columns = append(columns, "image")
	}
	if payload.Role != nil {
		claims, _ := ClaimsFromLocals(c)
		if claims == nil || claims.Role() != string(RoleAdmin) {
			return RespondError(c, ErrForbidden, u.Logger)
		}
		role, _ := ParseRole(*payload.Role)
		record.Role = role
		columns = append(columns, "role")
	}

	if len(columns) > 0 {
		if record, err = u.Repo.Users().Update(c.UserContext(), record, columns...); err != nil {
			return RespondError(c, err, u.Logger)
		}
	}

	return RespondOK(c, record.Public())
}

// Delete handles DELETE /user/:id
func (u *UsersController) Delete(c *fiber.Ctx) error {
	id, err := u.authorizedRecordID(c)
	if err != nil {
		return RespondError(c, err, u.Logger)
	}

	if _, err := u.Repo.Users().GetByID(c.UserContext(), id); err != nil {
		return RespondError(c, err, u.Logger)
	}

	if err := u.Repo.Users().Delete(c.UserContext(), id); err != nil {
		return RespondError(c, err, u.Logger)
	}

	return RespondOK(c, "User deleted")
}

// authorizedRecordID parses the :id parameter and enforces the
// admin-or-self rule. A bad id and an out-of-scope id both answer 400,
// matching the original service's contract.
func (u *UsersController) authorizedRecordID(c *fiber.Ctx) (int64, error) {
	invalidID := goerrors.New("Invalid ID", goerrors.CategoryBadInput).
		WithCode(goerrors.CodeBadRequest)

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 0 {
		return 0, invalidID
	}

	claims, ok := ClaimsFromLocals(c)
	if !ok {
		return 0, ErrUnauthorized
	}

	if claims.Role() != string(RoleAdmin) && claims.UserID() != id {
		return 0, invalidID
	}

	return id, nil
}
