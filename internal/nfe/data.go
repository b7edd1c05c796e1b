package nfe

import (
	"fmt"
	"strconv"
)

// NotApplicable marks derived string fields when the key could not be parsed.
const NotApplicable = "N/A"

// Registro is one raw row as returned by the backend, column name to value.
type Registro map[string]any

// RegistroEnriquecido is an output row: passthrough fields plus the fields
// derived from CHAVE_NF. Nil volume pointers become empty CSV cells.
type RegistroEnriquecido struct {
	OF             string
	ChaveNF        string
	NF             string
	CNPJ           string
	CNPJFormatado  string
	VolumeAtual    *int
	TotalVolumes   *int
	BaseNF         string
	BipadoEm       string
	RemovidoEm     string
	InclusaoManual bool
}

// Columns is the fixed CSV column order of the output file.
var Columns = []string{
	"OF",
	"CHAVE_NF",
	"NF",
	"CNPJ",
	"CNPJ_Formatado",
	"Volume_Atual",
	"Total_Volumes",
	"Base_NF",
	"Bipado_em",
	"Removido_em",
	"Inclusao_Manual",
}

func (r RegistroEnriquecido) csvRow() []string {
	return []string{
		r.OF,
		r.ChaveNF,
		r.NF,
		r.CNPJ,
		r.CNPJFormatado,
		intCell(r.VolumeAtual),
		intCell(r.TotalVolumes),
		r.BaseNF,
		r.BipadoEm,
		r.RemovidoEm,
		strconv.FormatBool(r.InclusaoManual),
	}
}

func intCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// stringValue renders a passthrough JSON value for the CSV. JSON numbers
// arrive as float64, integral ones must not gain a decimal point.
func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
