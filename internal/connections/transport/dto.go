package transport

import "time"

// ConnectRequest carries the OAuth callback payload.
type ConnectRequest struct {
	Code       string `json:"code" validate:"required"`
	LocationID string `json:"locationId"`
}

// ConnectionResponse represents a connection in API responses. Tokens are
// never exposed.
type ConnectionResponse struct {
	LocationID     string    `json:"locationId"`
	CompanyID      *string   `json:"companyId,omitempty"`
	TokenExpiresAt time.Time `json:"tokenExpiresAt"`
	ConnectedAt    time.Time `json:"connectedAt"`
}

// ConnectionListResponse wraps the user's connections.
type ConnectionListResponse struct {
	Items []ConnectionResponse `json:"items"`
}

// LocationResponse represents a CRM sub-account.
type LocationResponse struct {
	LocationID  string  `json:"locationId"`
	Name        string  `json:"name"`
	Address     *string `json:"address,omitempty"`
	CompanyID   *string `json:"companyId,omitempty"`
	IsInstalled bool    `json:"isInstalled"`
}

// LocationListResponse wraps the user's visible locations.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
}
