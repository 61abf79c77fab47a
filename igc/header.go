package igc

import (
	"fmt"
	"strconv"
	"strings"
)

// Unknown is the placeholder for header fields the log never supplied.
const Unknown = "Unknown"

// FlightHeader is the metadata block of a log. Every field is optional.
type FlightHeader struct {
	Date            string `json:"date"` // YYYY-MM-DD
	Pilot           string `json:"pilot"`
	GliderType      string `json:"glider_type"`
	GliderID        string `json:"glider_id"`
	CompetitionID   string `json:"competition_id"`
	FirmwareVersion string `json:"firmware_version"`
	HardwareVersion string `json:"hardware_version"`
	LoggerType      string `json:"logger_type"`
	LoggerID        string `json:"logger_id"`
	GPSDatum        string `json:"gps_datum"`
}

// HeaderKey names one FlightHeader field.
type HeaderKey string

const (
	HeaderDate          HeaderKey = "date"
	HeaderPilot         HeaderKey = "pilot"
	HeaderGliderType    HeaderKey = "glider_type"
	HeaderGliderID      HeaderKey = "glider_id"
	HeaderCompetitionID HeaderKey = "competition_id"
	HeaderFirmware      HeaderKey = "firmware_version"
	HeaderHardware      HeaderKey = "hardware_version"
	HeaderLoggerType    HeaderKey = "logger_type"
	HeaderLoggerID      HeaderKey = "logger_id"
	HeaderGPSDatum      HeaderKey = "gps_datum"
)

// HeaderField is one decoded header line.
type HeaderField struct {
	Key   HeaderKey `json:"key"`
	Value string    `json:"value"`
}

var headerPrefixes = []struct {
	prefix string
	key    HeaderKey
}{
	{"HFDTE", HeaderDate},
	{"HFPLT", HeaderPilot},
	{"HFGTY", HeaderGliderType},
	{"HFGID", HeaderGliderID},
	{"HFCID", HeaderCompetitionID},
	{"HFRFW", HeaderFirmware},
	{"HFRHW", HeaderHardware},
	{"HFFTY", HeaderLoggerType},
	{"HFDTM", HeaderGPSDatum},
}

// NewFlightHeader returns a header with every field set to Unknown.
func NewFlightHeader() FlightHeader {
	return FlightHeader{
		Date:            Unknown,
		Pilot:           Unknown,
		GliderType:      Unknown,
		GliderID:        Unknown,
		CompetitionID:   Unknown,
		FirmwareVersion: Unknown,
		HardwareVersion: Unknown,
		LoggerType:      Unknown,
		LoggerID:        Unknown,
		GPSDatum:        Unknown,
	}
}

// DecodeHeaderLine recognises the fixed header prefixes and the A (logger
// identity) record. Lines with no usable value report false.
func DecodeHeaderLine(line string) (HeaderField, bool) {
	if strings.HasPrefix(line, "A") {
		id := strings.TrimSpace(line[1:])
		if id == "" {
			return HeaderField{}, false
		}
		return HeaderField{Key: HeaderLoggerID, Value: id}, true
	}
	for _, hp := range headerPrefixes {
		if !strings.HasPrefix(line, hp.prefix) {
			continue
		}
		rest := line[len(hp.prefix):]
		if hp.key == HeaderDate {
			date, ok := decodeDate(rest)
			if !ok {
				return HeaderField{}, false
			}
			return HeaderField{Key: HeaderDate, Value: date}, true
		}
		value := headerValue(rest)
		if value == "" {
			return HeaderField{}, false
		}
		return HeaderField{Key: hp.key, Value: value}, true
	}
	return HeaderField{}, false
}

// Apply stores f unless the field already holds a value from an earlier line.
func (h *FlightHeader) Apply(f HeaderField) bool {
	dst := h.field(f.Key)
	if dst == nil || *dst != Unknown {
		return false
	}
	*dst = f.Value
	return true
}

func (h *FlightHeader) field(key HeaderKey) *string {
	switch key {
	case HeaderDate:
		return &h.Date
	case HeaderPilot:
		return &h.Pilot
	case HeaderGliderType:
		return &h.GliderType
	case HeaderGliderID:
		return &h.GliderID
	case HeaderCompetitionID:
		return &h.CompetitionID
	case HeaderFirmware:
		return &h.FirmwareVersion
	case HeaderHardware:
		return &h.HardwareVersion
	case HeaderLoggerType:
		return &h.LoggerType
	case HeaderLoggerID:
		return &h.LoggerID
	case HeaderGPSDatum:
		return &h.GPSDatum
	}
	return nil
}

// headerValue returns the text after the first colon, e.g. the pilot name in
// "HFPLTPILOTINCHARGE: Jane Doe".
func headerValue(rest string) string {
	i := strings.IndexByte(rest, ':')
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(rest[i+1:])
}

// decodeDate accepts "DDMMYY" and "DATE:DDMMYY,NN". Years are always 20YY.
func decodeDate(rest string) (string, bool) {
	if i := strings.IndexByte(rest, ':'); i >= 0 {
		rest = rest[i+1:]
	}
	rest = strings.TrimSpace(rest)
	if len(rest) < 6 {
		return "", false
	}
	digits := rest[:6]
	if _, err := strconv.Atoi(digits); err != nil || strings.ContainsAny(digits, "+-") {
		return "", false
	}
	return fmt.Sprintf("20%s-%s-%s", digits[4:6], digits[2:4], digits[0:2]), true
}
