package domain

import "strings"

// ImageType represents an accepted screenshot encoding.
type ImageType string

const (
	ImageTypeJPG  ImageType = "jpg"
	ImageTypePNG  ImageType = "png"
	ImageTypeWEBP ImageType = "webp"
)

// AllowedContentTypes maps MIME content types to ImageType.
var AllowedContentTypes = map[string]ImageType{
	"image/jpeg": ImageTypeJPG,
	"image/png":  ImageTypePNG,
	"image/webp": ImageTypeWEBP,
}

// AllowedExtensions maps file extensions (without dot) to their MIME content type.
var AllowedExtensions = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
}

// BrokerType identifies the brokerage app a screenshot was taken from.
// It selects the text layout heuristics used by text-only OCR engines.
type BrokerType string

const (
	BrokerToss    BrokerType = "TOSS"
	BrokerDefault BrokerType = "DEFAULT"
)

var brokerNames = map[BrokerType][2]string{
	BrokerToss:    {"토스증권", "Toss Securities"},
	BrokerDefault: {"기본", "Default"},
}

// KoreanName returns the broker's display name in Korean.
func (b BrokerType) KoreanName() string {
	return brokerNames[b.orDefault()][0]
}

// EnglishName returns the broker's display name in English.
func (b BrokerType) EnglishName() string {
	return brokerNames[b.orDefault()][1]
}

func (b BrokerType) orDefault() BrokerType {
	if _, ok := brokerNames[b]; ok {
		return b
	}
	return BrokerDefault
}

// ParseBrokerType resolves a broker hint by code, Korean name or English name.
// Blank and unknown values resolve to BrokerDefault.
func ParseBrokerType(s string) BrokerType {
	s = strings.TrimSpace(s)
	if s == "" {
		return BrokerDefault
	}
	for b, names := range brokerNames {
		if strings.EqualFold(string(b), s) || names[0] == s || strings.EqualFold(names[1], s) {
			return b
		}
	}
	return BrokerDefault
}

// ValidationStatus is the verdict of the weight validator.
type ValidationStatus string

const (
	ValidationEmpty   ValidationStatus = "empty"
	ValidationInvalid ValidationStatus = "invalid"
	ValidationWarn    ValidationStatus = "warn"
	ValidationValid   ValidationStatus = "valid"
)

// ReasonBadEntry is the Invalid reason for a blank ticker or a non-positive or non-numeric weight.
const ReasonBadEntry = "bad-entry"

// ExportFormat selects the draft export encoding.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)
