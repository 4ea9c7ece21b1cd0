package imgbed

// embedRequest for POST /embed
type embedRequest struct {
	Img string `json:"img"` // base64 encoded face crop
}

// embedResponse from POST /embed
type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}
