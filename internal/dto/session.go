package dto

type CreateSessionRequest struct {
	BookID string `json:"book_id,omitempty" example:"book_abc123"`
}

type SessionResponse struct {
	ID           string             `json:"id" example:"sess_abc123"`
	BookID       string             `json:"book_id,omitempty" example:"book_abc123"`
	Stage        string             `json:"stage" example:"recording" enums:"recording,uploading,transcribing,synthesizing,completing"`
	Provider     string             `json:"provider,omitempty" example:"openai"`
	Transcript   string             `json:"transcript,omitempty" example:"I just finished the chapter about..."`
	UsedFallback bool               `json:"used_fallback" example:"false"`
	ErrorKind    string             `json:"error_kind,omitempty" example:"network_error"`
	Artifacts    []ArtifactResponse `json:"artifacts,omitempty"`
	CreatedAt    string             `json:"created_at" example:"2025-01-15T10:30:00Z"`
	UpdatedAt    string             `json:"updated_at" example:"2025-01-15T10:35:00Z"`
}

type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

type ArtifactResponse struct {
	ID      string `json:"id,omitempty" example:"art_abc123"`
	Kind    string `json:"kind" example:"insight" enums:"insight,openQuestion,quote,followUpQuestion,contextExpansion"`
	Title   string `json:"title,omitempty" example:"Session insight 1"`
	Content string `json:"content" example:"Power concentrates around scarce resources."`
}

type ArtifactListResponse struct {
	Artifacts []ArtifactResponse `json:"artifacts"`
}
