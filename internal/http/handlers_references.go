package http

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"jobtrack/internal/store"
)

func referencesListHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	p, ok := currentPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Success: false,
			Code:    "UNAUTHENTICATED",
			Error:   "No user is associated with this credential",
		})
	}

	limit, offset, err := parsePagination(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   err.Error(),
		})
	}

	refs, err := st.ListReferences(c.Context(), p.scopeCreator(), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	items := make([]ReferenceItem, 0, len(refs))
	for _, r := range refs {
		items = append(items, referenceItem(r))
	}

	return c.JSON(ListReferencesResponse{
		Success:    true,
		References: items,
	})
}

func referenceCreateHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	p, ok := currentPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Success: false,
			Code:    "UNAUTHENTICATED",
			Error:   "No user is associated with this credential",
		})
	}

	var req ReferenceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Success: false,
			Code:    "VALIDATION_FAILED",
			Error:   "reference name is required",
		})
	}

	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Success: false,
			Code:    "VALIDATION_FAILED",
			Error:   "a valid companyId is required",
		})
	}

	// The company must exist and be visible to the caller.
	company, err := st.GetCompany(c.Context(), companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Success: false,
				Code:    "NOT_FOUND",
				Error:   "company not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}
	if !p.canAccess(company.CreatorID) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Success: false,
			Code:    "NOT_FOUND",
			Error:   "company not found",
		})
	}

	ref, err := st.CreateReference(c.Context(), uuid.New(), req.Name, strings.TrimSpace(req.Email), companyID, *p.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	item := referenceItem(ref)
	return c.Status(fiber.StatusCreated).JSON(ReferenceResponse{
		Success:   true,
		Reference: &item,
	})
}

// mergeReferenceUpdate folds a PATCH body into the current row. Omitted
// fields keep their value; an explicit empty email clears it.
func mergeReferenceUpdate(ref store.Reference, req UpdateReferenceRequest) (name, email string, err error) {
	name = ref.Name
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if name == "" {
			return "", "", errors.New("reference name cannot be empty")
		}
	}
	email = ref.Email
	if req.Email != nil {
		email = strings.TrimSpace(*req.Email)
	}
	return name, email, nil
}

func loadOwnedReference(c *fiber.Ctx, st *store.Store, p Principal) (store.Reference, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return store.Reference{}, fiber.NewError(fiber.StatusBadRequest, "invalid reference id")
	}

	ref, err := st.GetReference(c.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Reference{}, fiber.NewError(fiber.StatusNotFound, "reference not found")
		}
		return store.Reference{}, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if !p.canAccess(ref.CreatorID) {
		return store.Reference{}, fiber.NewError(fiber.StatusNotFound, "reference not found")
	}
	return ref, nil
}

func referenceDetailHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	p, ok := currentPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Success: false,
			Code:    "UNAUTHENTICATED",
			Error:   "No user is associated with this credential",
		})
	}

	ref, err := loadOwnedReference(c, st, p)
	if err != nil {
		return respondFiberError(c, err)
	}

	item := referenceItem(ref)
	return c.JSON(ReferenceResponse{
		Success:   true,
		Reference: &item,
	})
}

func referenceUpdateHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	p, ok := currentPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Success: false,
			Code:    "UNAUTHENTICATED",
			Error:   "No user is associated with this credential",
		})
	}

	ref, err := loadOwnedReference(c, st, p)
	if err != nil {
		return respondFiberError(c, err)
	}

	var req UpdateReferenceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}

	name, email, err := mergeReferenceUpdate(ref, req)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Success: false,
			Code:    "VALIDATION_FAILED",
			Error:   err.Error(),
		})
	}

	updated, err := st.UpdateReference(c.Context(), ref.ID, name, email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	item := referenceItem(updated)
	return c.JSON(ReferenceResponse{
		Success:   true,
		Reference: &item,
	})
}

func referenceDeleteHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	p, ok := currentPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Success: false,
			Code:    "UNAUTHENTICATED",
			Error:   "No user is associated with this credential",
		})
	}

	ref, err := loadOwnedReference(c, st, p)
	if err != nil {
		return respondFiberError(c, err)
	}

	if err := st.DeleteReference(c.Context(), ref.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{"success": true})
}
