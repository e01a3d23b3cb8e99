package validation

import (
	"net/url"
	"path"
	"strings"

	apperrors "github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/errors"
)

// URLValidator guards photo download URLs coming out of remote manifests.
type URLValidator struct {
	allowedSchemes    []string
	allowedHosts      []string
	allowedExtensions []string
}

// NewURLValidator creates a validator with the default photo settings.
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes:    []string{"http", "https"},
		allowedHosts:      []string{}, // empty means all hosts allowed
		allowedExtensions: []string{".jpg", ".jpeg", ".png"},
	}
}

// NewURLValidatorWithOptions creates a URL validator with custom schemes and
// hosts; the photo extension allow-list stays in place.
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes:    schemes,
		allowedHosts:      hosts,
		allowedExtensions: []string{".jpg", ".jpeg", ".png"},
	}
}

// ValidatePhotoURL validates if the provided URL is acceptable for photo
// download. URLs without a path extension pass; signed storage URLs often
// carry the format out of band.
func (v *URLValidator) ValidatePhotoURL(photoURL string) error {
	if strings.TrimSpace(photoURL) == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil)
	}

	parsedURL, err := url.Parse(photoURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}

	if !v.isSchemeAllowed(parsedURL.Scheme) {
		return apperrors.NewValidationError("URL scheme not allowed", nil)
	}

	if parsedURL.Host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}

	if len(v.allowedHosts) > 0 && !v.isHostAllowed(parsedURL.Host) {
		return apperrors.NewValidationError("URL host not allowed", nil)
	}

	if ext := strings.ToLower(path.Ext(parsedURL.Path)); ext != "" && !v.isExtensionAllowed(ext) {
		return apperrors.NewValidationError("URL does not reference a supported photo format", nil)
	}

	return nil
}

func (v *URLValidator) isSchemeAllowed(scheme string) bool {
	for _, allowed := range v.allowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	return false
}

// isHostAllowed returns true when no host restrictions are set.
func (v *URLValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	for _, allowed := range v.allowedHosts {
		if host == allowed {
			return true
		}
	}
	return false
}

func (v *URLValidator) isExtensionAllowed(ext string) bool {
	for _, allowed := range v.allowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
