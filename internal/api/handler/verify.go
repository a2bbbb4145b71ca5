package handler

import (
	"context"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/faceverify/faceverify/internal/domain"
	"github.com/faceverify/faceverify/internal/imageutil"
)

// Verifier compares two face images
type Verifier interface {
	Verify(ctx context.Context, image1, image2 []byte) (*domain.Verdict, error)
}

// VerifyHandler handles face comparison requests
type VerifyHandler struct {
	verifier Verifier
}

// NewVerifyHandler creates a new VerifyHandler instance
func NewVerifyHandler(verifier Verifier) *VerifyHandler {
	return &VerifyHandler{verifier: verifier}
}

// VerifyResponse response for the verify_faces endpoint
type VerifyResponse struct {
	SimilarityScore float64           `json:"similarity_score"`
	IsSamePerson    bool              `json:"is_same_person"`
	Confidence      domain.Confidence `json:"confidence"`
	Model           string            `json:"model"`
	Status          string            `json:"status"`
}

// VerifyFaces POST /verify_faces - compare the faces in image1 and image2
func (h *VerifyHandler) VerifyFaces(c *fiber.Ctx) error {
	image1, err := readImage(c, "image1")
	if err != nil {
		return err
	}

	image2, err := readImage(c, "image2")
	if err != nil {
		return err
	}

	verdict, err := h.verifier.Verify(c.UserContext(), image1, image2)
	if err != nil {
		return err
	}

	return c.JSON(VerifyResponse{
		SimilarityScore: verdict.SimilarityScore,
		IsSamePerson:    verdict.IsSamePerson,
		Confidence:      verdict.Confidence,
		Model:           verdict.Model,
		Status:          "success",
	})
}

// readImage reads one multipart file field
func readImage(c *fiber.Ctx, field string) ([]byte, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return nil, domain.ErrValidationFailed.
			WithMessage(fmt.Sprintf("%s is required", field)).
			WithError(err)
	}

	if file.Size > imageutil.MaxImageSize {
		return nil, domain.ErrImageTooLarge.WithMessage(fmt.Sprintf("%s exceeds the 10MB limit", field))
	}

	if file.Size == 0 {
		return nil, domain.ErrInvalidImage.WithMessage(fmt.Sprintf("%s is empty", field))
	}

	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	return data, nil
}
