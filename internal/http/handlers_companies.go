package http

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"jobtrack/internal/store"
)

func companiesListHandler(c *fiber.Ctx) error {
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

	companies, err := st.ListCompanies(c.Context(), p.scopeCreator(), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	items := make([]CompanyItem, 0, len(companies))
	for _, co := range companies {
		items = append(items, companyItem(co))
	}

	return c.JSON(ListCompaniesResponse{
		Success:   true,
		Companies: items,
	})
}

func companyCreateHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	p, ok := currentPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Success: false,
			Code:    "UNAUTHENTICATED",
			Error:   "No user is associated with this credential",
		})
	}

	var req CompanyRequest
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
			Error:   "company name is required",
		})
	}

	company, err := st.CreateCompany(c.Context(), uuid.New(), req.Name, strings.TrimSpace(req.Website), *p.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	item := companyItem(company)
	return c.Status(fiber.StatusCreated).JSON(CompanyResponse{
		Success: true,
		Company: &item,
	})
}

// mergeCompanyUpdate folds a PATCH body into the current row. Omitted
// fields keep their value; an explicit empty website clears it.
func mergeCompanyUpdate(company store.Company, req UpdateCompanyRequest) (name, website string, err error) {
	name = company.Name
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if name == "" {
			return "", "", errors.New("company name cannot be empty")
		}
	}
	website = company.Website
	if req.Website != nil {
		website = strings.TrimSpace(*req.Website)
	}
	return name, website, nil
}

// loadOwnedCompany fetches a company and checks the principal may see it.
// The fiber error it returns already carries the right status code.
func loadOwnedCompany(c *fiber.Ctx, st *store.Store, p Principal) (store.Company, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return store.Company{}, fiber.NewError(fiber.StatusBadRequest, "invalid company id")
	}

	company, err := st.GetCompany(c.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Company{}, fiber.NewError(fiber.StatusNotFound, "company not found")
		}
		return store.Company{}, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if !p.canAccess(company.CreatorID) {
		// Report not-found rather than forbidden so ids don't leak.
		return store.Company{}, fiber.NewError(fiber.StatusNotFound, "company not found")
	}
	return company, nil
}

func companyDetailHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	p, ok := currentPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Success: false,
			Code:    "UNAUTHENTICATED",
			Error:   "No user is associated with this credential",
		})
	}

	company, err := loadOwnedCompany(c, st, p)
	if err != nil {
		return respondFiberError(c, err)
	}

	item := companyItem(company)
	return c.JSON(CompanyResponse{
		Success: true,
		Company: &item,
	})
}

func companyUpdateHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	p, ok := currentPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Success: false,
			Code:    "UNAUTHENTICATED",
			Error:   "No user is associated with this credential",
		})
	}

	company, err := loadOwnedCompany(c, st, p)
	if err != nil {
		return respondFiberError(c, err)
	}

	var req UpdateCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}

	name, website, err := mergeCompanyUpdate(company, req)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Success: false,
			Code:    "VALIDATION_FAILED",
			Error:   err.Error(),
		})
	}

	updated, err := st.UpdateCompany(c.Context(), company.ID, name, website)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	item := companyItem(updated)
	return c.JSON(CompanyResponse{
		Success: true,
		Company: &item,
	})
}

func companyDeleteHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	p, ok := currentPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Success: false,
			Code:    "UNAUTHENTICATED",
			Error:   "No user is associated with this credential",
		})
	}

	company, err := loadOwnedCompany(c, st, p)
	if err != nil {
		return respondFiberError(c, err)
	}

	if err := st.DeleteCompany(c.Context(), company.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{"success": true})
}
