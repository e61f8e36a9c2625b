package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

// ValidateImageRef validates one bucket/key pair before it reaches the
// analysis pipeline.
func ValidateImageRef(bucket, key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("image key cannot be empty")
	}
	if len(key) > 1024 {
		return fmt.Errorf("image key too long (max 1024 chars)")
	}
	if len(bucket) > 63 {
		return fmt.Errorf("bucket name too long (max 63 chars)")
	}

	// Block path traversal attempts
	if strings.Contains(key, "..") {
		return fmt.Errorf("path traversal detected in image key")
	}
	if strings.HasPrefix(key, "/") {
		return fmt.Errorf("image key must be relative")
	}

	// Block dangerous patterns
	dangerous := []string{"$(", "`", "&", "|", ";", "\n", "\r", "\x00"}
	for _, d := range dangerous {
		if strings.Contains(key, d) {
			return fmt.Errorf("invalid characters in image key")
		}
	}

	if bucket != "" {
		// S3-style bucket naming: lowercase alphanumeric, dash, dot
		pattern := `^[a-z0-9]([a-z0-9.-]*[a-z0-9])?$`
		matched, _ := regexp.MatchString(pattern, bucket)
		if !matched {
			return fmt.Errorf("invalid bucket name format")
		}
	}

	return nil
}

// ValidateImageCount enforces the per-request image limit
func ValidateImageCount(count, max int) error {
	if max <= 0 {
		max = 10
	}
	if count == 0 {
		return fmt.Errorf("at least one image is required")
	}
	if count > max {
		return fmt.Errorf("too many images: %d (max %d per request)", count, max)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}

	// Allow alphanumeric, dash, underscore (max 64 chars)
	pattern := `^[a-zA-Z0-9_-]{1,64}$`
	matched, _ := regexp.MatchString(pattern, tenant)
	if !matched {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}

	return nil
}

// ValidateAssessmentID validates assessment ID format
func ValidateAssessmentID(id string) error {
	if id == "" {
		return fmt.Errorf("assessment ID cannot be empty")
	}

	// UUID pattern
	pattern := `^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`
	matched, _ := regexp.MatchString(pattern, strings.ToLower(id))
	if !matched {
		return fmt.Errorf("invalid assessment ID format")
	}

	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidateDays validates days parameter
func ValidateDays(days int) int {
	if days <= 0 {
		return 7 // default
	}
	if days > 365 {
		return 365 // max 1 year
	}
	return days
}
