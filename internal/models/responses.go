package models

// BoardResponse is returned by the windowed endpoints. Total counts every
// matching flight of the day, Flights only the capped window.
type BoardResponse struct {
	Flights []FlightRecord `json:"flights"`
	Total   int            `json:"total"`
	Message string         `json:"message,omitempty"`
}

type AllFlightsResponse struct {
	Flights []FlightRecord `json:"flights"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success  bool   `json:"success"`
	Role     string `json:"role,omitempty"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
}
