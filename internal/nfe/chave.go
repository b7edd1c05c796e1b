package nfe

import "fmt"

const (
	// ChaveComVolumes is the length of a composite key carrying NF, CNPJ
	// and volume counters at fixed offsets.
	ChaveComVolumes = 48
	// ChaveEtiqueta is the length of an opaque label key with no sub-fields.
	ChaveEtiqueta = 27
)

// VolumeInfo holds the volume counters encoded in the last 6 digits of a key.
type VolumeInfo struct {
	Base         string
	VolumeAtual  int
	TotalVolumes int
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ExtractVolumeInfo splits the trailing 6 digits of a key into the current
// volume and the total volume count, with everything before them as base.
func ExtractVolumeInfo(chave string) (VolumeInfo, bool) {
	if len(chave) < 6 {
		return VolumeInfo{}, false
	}

	sufixo := chave[len(chave)-6:]
	if !isDigits(sufixo) {
		return VolumeInfo{}, false
	}

	volAtual := int(sufixo[0]-'0')*100 + int(sufixo[1]-'0')*10 + int(sufixo[2]-'0')
	totalVol := int(sufixo[3]-'0')*100 + int(sufixo[4]-'0')*10 + int(sufixo[5]-'0')

	return VolumeInfo{
		Base:         chave[:len(chave)-6],
		VolumeAtual:  volAtual,
		TotalVolumes: totalVol,
	}, true
}

// ExtractNFCNPJ reads the NF number from chave[0:9] and the CNPJ from
// chave[12:26]. Both slices must be fully numeric.
func ExtractNFCNPJ(chave string) (string, string, bool) {
	if len(chave) < 26 {
		return "", "", false
	}

	nf := chave[:9]
	cnpj := chave[12:26]

	if !isDigits(nf) || !isDigits(cnpj) {
		return "", "", false
	}

	return nf, cnpj, true
}

// FormatCNPJ renders a 14-digit CNPJ as XX.XXX.XXX/XXXX-XX.
func FormatCNPJ(cnpj string) string {
	if len(cnpj) != 14 {
		return NotApplicable
	}

	return fmt.Sprintf("%s.%s.%s/%s-%s", cnpj[:2], cnpj[2:5], cnpj[5:8], cnpj[8:12], cnpj[12:])
}
