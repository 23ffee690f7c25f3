package dto

type MeResponse struct {
	ID        string `json:"id" example:"usr_abc123"`
	Email     string `json:"email,omitempty" example:"reader@example.com"`
	Name      string `json:"name,omitempty" example:"Ada Lovelace"`
	AvatarURL string `json:"avatar_url,omitempty" example:"https://example.com/avatar.png"`
}
