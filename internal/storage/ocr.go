package storage

import (
	"context"

	"github.com/otiai10/gosseract/v2"

	apperrors "github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/errors"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/models"
)

// TesseractExtractor runs OCR over photo bytes via the Tesseract engine. A
// fresh client is created per extraction; gosseract clients are not safe for
// concurrent use and batches run photos sequentially anyway.
type TesseractExtractor struct {
	language string
}

// NewTesseractExtractor builds an extractor for the given Tesseract language
// code (e.g. "eng").
func NewTesseractExtractor(language string) *TesseractExtractor {
	if language == "" {
		language = "eng"
	}
	return &TesseractExtractor{language: language}
}

// ExtractText fetches the photo bytes and runs OCR over them. Word-level
// confidences are averaged into a single extraction confidence.
func (e *TesseractExtractor) ExtractText(ctx context.Context, res models.ImageResource) (models.TextExtraction, error) {
	data, err := res.Fetch(ctx)
	if err != nil {
		return models.TextExtraction{}, apperrors.NewExtractionError("failed to fetch photo bytes", err)
	}
	if ctx.Err() != nil {
		return models.TextExtraction{}, ctx.Err()
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.language); err != nil {
		return models.TextExtraction{}, apperrors.NewExtractionError("failed to set OCR language", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return models.TextExtraction{}, apperrors.NewExtractionError("failed to load photo into OCR engine", err)
	}

	text, err := client.Text()
	if err != nil {
		return models.TextExtraction{}, apperrors.NewExtractionError("OCR extraction failed", err)
	}

	return models.TextExtraction{
		Text:       text,
		Confidence: e.meanWordConfidence(client),
	}, nil
}

// meanWordConfidence averages Tesseract's per-word confidences. Failures here
// are non-fatal; the text already extracted stands on its own.
func (e *TesseractExtractor) meanWordConfidence(client *gosseract.Client) float64 {
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range boxes {
		sum += b.Confidence
	}
	return sum / float64(len(boxes))
}
