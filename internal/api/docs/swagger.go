package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
)

// VerifyFacesResponse represents a completed comparison
type VerifyFacesResponse struct {
	SimilarityScore float64 `json:"similarity_score" example:"78.42"`
	IsSamePerson    bool    `json:"is_same_person" example:"true"`
	Confidence      string  `json:"confidence" example:"high"`
	Model           string  `json:"model" example:"InsightFace ArcFace"`
	Status          string  `json:"status" example:"success"`
}

// RootResponse represents the service banner
type RootResponse struct {
	Message     string `json:"message" example:"Face Verification API"`
	ModelStatus string `json:"model_status" example:"loaded"`
	Status      string `json:"status" example:"active"`
}

// HealthResponse represents the liveness probe
type HealthResponse struct {
	Status      string `json:"status" example:"healthy"`
	Service     string `json:"service" example:"face_verification"`
	ModelLoaded bool   `json:"model_loaded" example:"true"`
	Model       string `json:"model,omitempty" example:"InsightFace ArcFace"`
}

// ReadyResponse represents the readiness probe
type ReadyResponse struct {
	Status string `json:"status" example:"ready"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"image1 is required"`
}

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Face Verification API",
		Version:     "v1.0.0",
		Description: "Compares the faces in two images with an ArcFace embedding model",
		Host:        "localhost:8000",
		Path:        "/",
	})

	endpoints := []*endpoint.EndPoint{
		endpoint.New(
			endpoint.POST,
			"/verify_faces",
			endpoint.WithTags("Verification"),
			endpoint.WithSummary("Compare two faces"),
			endpoint.WithDescription("Multipart form with files image1 and image2 (JPEG, PNG or WebP, up to 10MB each). "+
				"The first detected face of each image is embedded; the cosine similarity is reported as a 0-100 score "+
				"and the pair is the same person when the score is above 65."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(VerifyFacesResponse{}, "200", "Comparison completed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "image1 is required"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Invalid image file for image 1"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in image 2"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "IMAGE_TOO_LARGE", Message: "image1 exceeds the 10MB limit"}, "413", "Payload Too Large"),
				response.New(ErrorResponse{Code: "RATE_LIMIT_EXCEEDED", Message: "Rate limit exceeded"}, "429", "Too Many Requests"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
				response.New(ErrorResponse{Code: "PROVIDER_ERROR", Message: "Face recognition provider failed"}, "502", "Bad Gateway"),
				response.New(ErrorResponse{Code: "MODEL_UNAVAILABLE", Message: "Face model not loaded"}, "503", "Service Unavailable"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Service banner"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RootResponse{}, "200", "Service is running"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Liveness probe"),
			endpoint.WithDescription("Always 200; model_loaded reports whether comparisons can be served"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Service is alive"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Readiness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ReadyResponse{}, "200", "Model loaded"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ReadyResponse{Status: "model not loaded"}, "503", "Model not loaded"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
