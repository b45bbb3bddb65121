package calendar_token

// SaveTokenRequest HTTP request model
// Токен выдаёт внешний OAuth-поток, сервис только хранит его
type SaveTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}
