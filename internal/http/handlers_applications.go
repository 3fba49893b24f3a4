package http

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"jobtrack/internal/fsm"
	"jobtrack/internal/metrics"
	"jobtrack/internal/store"
)

func applicationsListHandler(c *fiber.Ctx) error {
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

	filter := store.ApplicationListFilter{
		CreatorID: p.scopeCreator(),
		Limit:     limit,
		Offset:    offset,
	}

	if v := c.Query("companyId"); v != "" {
		companyID, err := uuid.Parse(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Success: false,
				Code:    "BAD_REQUEST",
				Error:   "invalid companyId filter",
			})
		}
		filter.CompanyID = &companyID
	}

	if v := c.Query("status"); v != "" {
		status, err := fsm.ParseStatus(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Success: false,
				Code:    "BAD_REQUEST",
				Error:   err.Error(),
			})
		}
		filter.Status = string(status)
	}

	apps, err := st.ListApplications(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	items := make([]ApplicationItem, 0, len(apps))
	for _, a := range apps {
		items = append(items, applicationItem(a))
	}

	return c.JSON(ListApplicationsResponse{
		Success:      true,
		Applications: items,
	})
}

func applicationCreateHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	p, ok := currentPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Success: false,
			Code:    "UNAUTHENTICATED",
			Error:   "No user is associated with this credential",
		})
	}

	var req CreateApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}

	req.Position = strings.TrimSpace(req.Position)
	if req.Position == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Success: false,
			Code:    "VALIDATION_FAILED",
			Error:   "position is required",
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

	app, err := st.CreateApplication(c.Context(), store.CreateApplicationParams{
		ID:        uuid.New(),
		CompanyID: companyID,
		Position:  req.Position,
		City:      strings.TrimSpace(req.City),
		Region:    strings.TrimSpace(req.Region),
		CreatorID: *p.UserID,
		Notes:     req.Notes,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	item := applicationItem(app)
	return c.Status(fiber.StatusCreated).JSON(ApplicationResponse{
		Success:     true,
		Application: &item,
	})
}

func loadOwnedApplication(c *fiber.Ctx, st *store.Store, p Principal) (store.Application, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return store.Application{}, fiber.NewError(fiber.StatusBadRequest, "invalid application id")
	}

	app, err := st.GetApplication(c.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Application{}, fiber.NewError(fiber.StatusNotFound, "application not found")
		}
		return store.Application{}, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if !p.canAccess(app.CreatorID) {
		return store.Application{}, fiber.NewError(fiber.StatusNotFound, "application not found")
	}
	return app, nil
}

func applicationDetailHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	p, ok := currentPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Success: false,
			Code:    "UNAUTHENTICATED",
			Error:   "No user is associated with this credential",
		})
	}

	app, err := loadOwnedApplication(c, st, p)
	if err != nil {
		return respondFiberError(c, err)
	}

	item := applicationItem(app)
	return c.JSON(ApplicationResponse{
		Success:     true,
		Application: &item,
	})
}

func applicationUpdateHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	p, ok := currentPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Success: false,
			Code:    "UNAUTHENTICATED",
			Error:   "No user is associated with this credential",
		})
	}

	app, err := loadOwnedApplication(c, st, p)
	if err != nil {
		return respondFiberError(c, err)
	}

	var req UpdateApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}

	position := app.Position
	if req.Position != nil {
		position = strings.TrimSpace(*req.Position)
		if position == "" {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
				Success: false,
				Code:    "VALIDATION_FAILED",
				Error:   "position cannot be empty",
			})
		}
	}
	city := app.City
	if req.City != nil {
		city = strings.TrimSpace(*req.City)
	}
	region := app.Region
	if req.Region != nil {
		region = strings.TrimSpace(*req.Region)
	}
	notes := app.Notes
	if req.Notes != nil {
		notes = *req.Notes
	}

	updated, err := st.UpdateApplicationDetails(c.Context(), app.ID, position, city, region, notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Success: false,
				Code:    "NOT_FOUND",
				Error:   "application not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	item := applicationItem(updated)
	return c.JSON(ApplicationResponse{
		Success:     true,
		Application: &item,
	})
}

func applicationDeleteHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	p, ok := currentPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Success: false,
			Code:    "UNAUTHENTICATED",
			Error:   "No user is associated with this credential",
		})
	}

	app, err := loadOwnedApplication(c, st, p)
	if err != nil {
		return respondFiberError(c, err)
	}

	if err := st.SoftDeleteApplication(c.Context(), app.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Success: false,
				Code:    "NOT_FOUND",
				Error:   "application not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// applicationTransitionsHandler returns the transitions currently
// available from the application's status.
func applicationTransitionsHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	p, ok := currentPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Success: false,
			Code:    "UNAUTHENTICATED",
			Error:   "No user is associated with this credential",
		})
	}

	app, err := loadOwnedApplication(c, st, p)
	if err != nil {
		return respondFiberError(c, err)
	}

	allowed := fsm.Allowed(app.Status)
	names := make([]string, 0, len(allowed))
	for _, tr := range allowed {
		names = append(names, string(tr))
	}

	return c.JSON(TransitionsResponse{
		Success:     true,
		Status:      string(app.Status),
		Transitions: names,
	})
}

// applicationTransitionHandler fires a named transition against an
// application. Illegal transitions return 409, guard rejections 422,
// and a concurrent status change 409 with a conflict code.
func applicationTransitionHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	p, ok := currentPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Success: false,
			Code:    "UNAUTHENTICATED",
			Error:   "No user is associated with this credential",
		})
	}

	app, err := loadOwnedApplication(c, st, p)
	if err != nil {
		return respondFiberError(c, err)
	}

	var req TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}

	tr, err := fsm.ParseTransition(req.Transition)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "UNKNOWN_TRANSITION",
			Error:   err.Error(),
		})
	}

	args := fsm.Args{Reason: strings.TrimSpace(req.Reason)}
	if req.InterviewDate != "" {
		d, err := time.Parse(dateOnly, req.InterviewDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Success: false,
				Code:    "BAD_REQUEST",
				Error:   "interviewDate must be YYYY-MM-DD",
			})
		}
		args.InterviewDate = &d
	}

	dates := fsm.Dates{Submitted: app.SubmittedDate}
	if app.InterviewDate.Valid {
		iv := app.InterviewDate.Time
		dates.Interview = &iv
	}

	outcome, err := fsm.Apply(app.Status, tr, time.Now(), dates, args)
	if err != nil {
		var illegalErr *fsm.IllegalTransitionError
		if errors.As(err, &illegalErr) {
			metrics.RecordTransition(string(tr), "illegal")
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
				Success: false,
				Code:    "TRANSITION_NOT_ALLOWED",
				Error:   err.Error(),
				Details: fiber.Map{
					"status":  string(illegalErr.From),
					"allowed": fsm.Allowed(illegalErr.From),
				},
			})
		}
		var guardErr *fsm.GuardError
		if errors.As(err, &guardErr) {
			metrics.RecordTransition(string(tr), "guard_rejected")
			return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
				Success: false,
				Code:    "TRANSITION_GUARD_REJECTED",
				Error:   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	updated, err := st.ApplyTransition(c.Context(), app.ID, app.Status, tr, outcome)
	if err != nil {
		if errors.Is(err, store.ErrStatusConflict) {
			metrics.RecordTransition(string(tr), "conflict")
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
				Success: false,
				Code:    "STATUS_CONFLICT",
				Error:   "application status changed concurrently, re-read and retry",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	metrics.RecordTransition(string(tr), "applied")

	item := applicationItem(updated)
	return c.JSON(ApplicationResponse{
		Success:     true,
		Application: &item,
	})
}

// applicationHistoryHandler returns the chronological transition log.
func applicationHistoryHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	p, ok := currentPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Success: false,
			Code:    "UNAUTHENTICATED",
			Error:   "No user is associated with this credential",
		})
	}

	app, err := loadOwnedApplication(c, st, p)
	if err != nil {
		return respondFiberError(c, err)
	}

	changes, err := st.ListStatusChanges(c.Context(), app.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	items := make([]StatusChangeItem, 0, len(changes))
	for _, sc := range changes {
		items = append(items, StatusChangeItem{
			FromStatus: string(sc.FromStatus),
			ToStatus:   string(sc.ToStatus),
			Transition: string(sc.Transition),
			OccurredAt: sc.OccurredAt,
		})
	}

	return c.JSON(HistoryResponse{
		Success: true,
		History: items,
	})
}
