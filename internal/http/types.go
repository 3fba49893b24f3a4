package http

import "time"

// ErrorResponse is the error envelope shared by all endpoints.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Code    string      `json:"code,omitempty"`
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// CompanyItem is the JSON shape of a company.
type CompanyItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Website   string    `json:"website,omitempty"`
	CreatorID string    `json:"creatorId"`
	CreatedAt time.Time `json:"createdAt"`
}

type CompanyRequest struct {
	Name    string `json:"name"`
	Website string `json:"website,omitempty"`
}

// UpdateCompanyRequest uses pointer fields so PATCH can tell an omitted
// field from one explicitly set to the empty string.
type UpdateCompanyRequest struct {
	Name    *string `json:"name,omitempty"`
	Website *string `json:"website,omitempty"`
}

type CompanyResponse struct {
	Success bool         `json:"success"`
	Code    string       `json:"code,omitempty"`
	Error   string       `json:"error,omitempty"`
	Company *CompanyItem `json:"company,omitempty"`
}

type ListCompaniesResponse struct {
	Success   bool          `json:"success"`
	Code      string        `json:"code,omitempty"`
	Error     string        `json:"error,omitempty"`
	Companies []CompanyItem `json:"companies,omitempty"`
}

// ReferenceItem is the JSON shape of a job reference.
type ReferenceItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CompanyID string    `json:"companyId"`
	CreatorID string    `json:"creatorId"`
	CreatedAt time.Time `json:"createdAt"`
}

type ReferenceRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	CompanyID string `json:"companyId,omitempty"`
}

// UpdateReferenceRequest uses pointer fields so PATCH can tell an
// omitted field from one explicitly set to the empty string.
type UpdateReferenceRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

type ReferenceResponse struct {
	Success   bool           `json:"success"`
	Code      string         `json:"code,omitempty"`
	Error     string         `json:"error,omitempty"`
	Reference *ReferenceItem `json:"reference,omitempty"`
}

type ListReferencesResponse struct {
	Success    bool            `json:"success"`
	Code       string          `json:"code,omitempty"`
	Error      string          `json:"error,omitempty"`
	References []ReferenceItem `json:"references,omitempty"`
}

// ApplicationItem is the JSON shape of a job application. Date-only
// fields use YYYY-MM-DD strings.
type ApplicationItem struct {
	ID                 string    `json:"id"`
	CompanyID          string    `json:"companyId"`
	Position           string    `json:"position"`
	City               string    `json:"city,omitempty"`
	Region             string    `json:"region,omitempty"`
	Status             string    `json:"status"`
	CreatorID          string    `json:"creatorId"`
	Notes              string    `json:"notes,omitempty"`
	SubmittedDate      string    `json:"submittedDate"`
	UpdatedDate        string    `json:"updatedDate,omitempty"`
	InterviewDate      string    `json:"interviewDate,omitempty"`
	RejectedDate       string    `json:"rejectedDate,omitempty"`
	RejectedReason     string    `json:"rejectedReason,omitempty"`
	RejectedFromStatus string    `json:"rejectedFromStatus,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type CreateApplicationRequest struct {
	CompanyID string `json:"companyId"`
	Position  string `json:"position"`
	City      string `json:"city,omitempty"`
	Region    string `json:"region,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// UpdateApplicationRequest carries the writable fields of an
// application. Status is deliberately absent: it only changes via
// transitions.
type UpdateApplicationRequest struct {
	Position *string `json:"position,omitempty"`
	City     *string `json:"city,omitempty"`
	Region   *string `json:"region,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

type ApplicationResponse struct {
	Success     bool             `json:"success"`
	Code        string           `json:"code,omitempty"`
	Error       string           `json:"error,omitempty"`
	Application *ApplicationItem `json:"application,omitempty"`
}

type ListApplicationsResponse struct {
	Success      bool              `json:"success"`
	Code         string            `json:"code,omitempty"`
	Error        string            `json:"error,omitempty"`
	Applications []ApplicationItem `json:"applications,omitempty"`
}

// TransitionRequest invokes a named transition on an application.
type TransitionRequest struct {
	Transition string `json:"transition"`
	// Reason is required for reject.
	Reason string `json:"reason,omitempty"`
	// InterviewDate (YYYY-MM-DD) is required for schedule_interview.
	InterviewDate string `json:"interviewDate,omitempty"`
}

type TransitionsResponse struct {
	Success     bool     `json:"success"`
	Code        string   `json:"code,omitempty"`
	Error       string   `json:"error,omitempty"`
	Status      string   `json:"status,omitempty"`
	Transitions []string `json:"transitions"`
}

// StatusChangeItem is one row of an application's transition history.
type StatusChangeItem struct {
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	Transition string    `json:"transition"`
	OccurredAt time.Time `json:"occurredAt"`
}

type HistoryResponse struct {
	Success bool               `json:"success"`
	Code    string             `json:"code,omitempty"`
	Error   string             `json:"error,omitempty"`
	History []StatusChangeItem `json:"history"`
}

// UserItem is the JSON shape of a user. Password hashes never leave
// the store.
type UserItem struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Slug      string    `json:"slug"`
	Provider  string    `json:"provider"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

type UserResponse struct {
	Success bool      `json:"success"`
	Code    string    `json:"code,omitempty"`
	Error   string    `json:"error,omitempty"`
	User    *UserItem `json:"user,omitempty"`
}

type ListUsersResponse struct {
	Success bool       `json:"success"`
	Code    string     `json:"code,omitempty"`
	Error   string     `json:"error,omitempty"`
	Users   []UserItem `json:"users,omitempty"`
}

type APIKeyItem struct {
	ID                 string    `json:"id"`
	Label              string    `json:"label"`
	UserID             string    `json:"userId,omitempty"`
	IsAdmin            bool      `json:"isAdmin"`
	RateLimitPerMinute int       `json:"rateLimitPerMinute,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

type CreateAPIKeyRequest struct {
	Label              string `json:"label"`
	UserID             string `json:"userId,omitempty"`
	IsAdmin            bool   `json:"isAdmin,omitempty"`
	RateLimitPerMinute int    `json:"rateLimitPerMinute,omitempty"`
}

type CreateAPIKeyResponse struct {
	Success bool        `json:"success"`
	Code    string      `json:"code,omitempty"`
	Error   string      `json:"error,omitempty"`
	Key     string      `json:"key,omitempty"`
	APIKey  *APIKeyItem `json:"apiKey,omitempty"`
}

type ListAPIKeysResponse struct {
	Success bool         `json:"success"`
	Code    string       `json:"code,omitempty"`
	Error   string       `json:"error,omitempty"`
	APIKeys []APIKeyItem `json:"apiKeys,omitempty"`
}
