package loader

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"

	"dirql/internal/table"
)

// Format identifies a supported base file format, before compression.
type Format int

const (
	// FormatUnknown marks a file whose format could not be determined.
	FormatUnknown Format = iota
	// FormatCSV is comma-separated values.
	FormatCSV
	// FormatTSV is tab-separated values.
	FormatTSV
	// FormatTOML is a TOML document.
	FormatTOML
	// FormatYAML is a YAML document.
	FormatYAML
	// FormatXLSX is an Excel workbook; only the first sheet is loaded.
	FormatXLSX
	// FormatParquet is an Apache Parquet file.
	FormatParquet
)

// String returns the format name used in error messages.
func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatTSV:
		return "tsv"
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	case FormatXLSX:
		return "xlsx"
	case FormatParquet:
		return "parquet"
	default:
		return "unknown"
	}
}

// binary reports whether the format cannot appear behind a text
// compression wrapper.
func (f Format) binary() bool {
	return f == FormatXLSX || f == FormatParquet
}

// Format extensions.
const (
	extCSV     = ".csv"
	extTSV     = ".tsv"
	extTOML    = ".toml"
	extYAML    = ".yaml"
	extYML     = ".yml"
	extXLSX    = ".xlsx"
	extParquet = ".parquet"
)

// compressionExts lists the recognized compression suffixes.
var compressionExts = []string{extGZ, extBZ2, extXZ, extZSTD}

// stripCompression removes a single trailing compression extension.
func stripCompression(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range compressionExts {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// formatFromExtension maps a file path to its format, looking through one
// compression suffix. Unknown extensions yield FormatUnknown; the caller
// may still fall back to content sniffing.
func formatFromExtension(path string) Format {
	base := stripCompression(path)
	switch strings.ToLower(filepath.Ext(base)) {
	case extCSV:
		return FormatCSV
	case extTSV:
		return FormatTSV
	case extTOML:
		return FormatTOML
	case extYAML, extYML:
		return FormatYAML
	case extXLSX:
		return FormatXLSX
	case extParquet:
		return FormatParquet
	default:
		return FormatUnknown
	}
}

// IsSupported reports whether the file name carries a recognized format
// extension, optionally behind a compression suffix. Used to filter
// directory walks; extension-less files can still be loaded explicitly via
// content sniffing.
func IsSupported(path string) bool {
	return formatFromExtension(path) != FormatUnknown
}

// sniffSampleLines bounds how many lines the CSV consistency check reads.
const sniffSampleLines = 8

// sniffFormat guesses the format of a content sample. A leading '[' or a
// bare "key = value" line suggests TOML; a comma-delimited first line whose
// field count repeats across the sample suggests CSV.
func sniffFormat(sample []byte) Format {
	trimmed := bytes.TrimLeft(sample, " \t\r\n")
	if len(trimmed) == 0 {
		return FormatUnknown
	}
	if trimmed[0] == '[' {
		return FormatTOML
	}

	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(sample))
	for sc.Scan() && len(lines) < sniffSampleLines {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return FormatUnknown
	}

	if isTOMLAssignment(lines[0]) {
		return FormatTOML
	}

	fields := strings.Count(lines[0], ",") + 1
	if fields > 1 {
		consistent := true
		for _, line := range lines[1:] {
			if strings.Count(line, ",")+1 != fields {
				consistent = false
				break
			}
		}
		if consistent {
			return FormatCSV
		}
	}
	return FormatUnknown
}

// isTOMLAssignment reports whether a line looks like `key = value` with a
// bare key, which cannot open a CSV file.
func isTOMLAssignment(line string) bool {
	eq := strings.Index(line, "=")
	if eq <= 0 {
		return false
	}
	key := strings.TrimSpace(line[:eq])
	if key == "" || strings.ContainsAny(key, ", \t") {
		return false
	}
	return strings.TrimSpace(line[eq+1:]) != ""
}

// TableNameFromPath derives the SQL identifier for a file: base name with
// compression and format extensions stripped, then transliterated.
func TableNameFromPath(path string) string {
	name := stripCompression(filepath.Base(path))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return table.SanitizeIdentifier(name)
}
