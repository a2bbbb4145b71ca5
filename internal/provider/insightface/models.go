package insightface

// RepresentRequest for POST /represent
type RepresentRequest struct {
	Img     string `json:"img"`      // base64 encoded image
	Model   string `json:"model"`    // "buffalo_l", "antelopev2", ...
	DetSize int    `json:"det_size"` // detector input edge, 640 by default
}

// RepresentResponse from POST /represent
type RepresentResponse struct {
	Results []RepresentResult `json:"results"`
}

type RepresentResult struct {
	Embedding      []float64  `json:"embedding"`
	FacialArea     FacialArea `json:"facial_area"`
	FaceConfidence float64    `json:"face_confidence"`
}

type FacialArea struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// InfoResponse from GET /info
type InfoResponse struct {
	Status    string   `json:"status"`
	Version   string   `json:"version"`
	Model     string   `json:"model"`
	Providers []string `json:"providers"`
}
