package highlevel

// apiVersion is the date-pinned API version the platform requires on every
// request.
const apiVersion = "2021-07-28"

// defaultTokenTTLSeconds is used when the token response omits expires_in.
// The platform issues 7-day tokens.
const defaultTokenTTLSeconds = 604800

// Token is the OAuth token response.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	LocationID   string `json:"locationId"`
	CompanyID    string `json:"companyId"`
	UserType     string `json:"userType"`
	Error        string `json:"error"`
}

// Location is one sub-account the app is installed on.
type Location struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	CompanyID   string `json:"companyId"`
	IsInstalled bool   `json:"isInstalled"`
}

type locationsResponse struct {
	Locations []Location `json:"locations"`
}

// Form is a lead-capture form defined in the CRM.
type Form struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type formsResponse struct {
	Forms []Form `json:"forms"`
	Total int    `json:"total"`
}

// PhoneNumber is a tracked inbound number.
type PhoneNumber struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Name   string `json:"name"`
}

type phoneNumbersResponse struct {
	PhoneNumbers []PhoneNumber `json:"phoneNumbers"`
}

// Survey is a survey funnel defined in the CRM.
type Survey struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type surveysResponse struct {
	Surveys []Survey `json:"surveys"`
	Total   int      `json:"total"`
}

// Contact is a CRM contact record. The raw payload is preserved alongside the
// typed fields because lead mapping digs into source-specific attributes.
type Contact struct {
	ID          string            `json:"id"`
	FirstName   string            `json:"firstName"`
	LastName    string            `json:"lastName"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone"`
	Source      string            `json:"source"`
	DateAdded   string            `json:"dateAdded"`
	Tags        []string          `json:"tags"`
	CustomField map[string]string `json:"customField"`
}

type contactsResponse struct {
	Contacts []Contact `json:"contacts"`
	Total    int       `json:"total"`
}
