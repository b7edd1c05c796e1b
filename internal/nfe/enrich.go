package nfe

// Enrich derives the output rows from raw backend rows. Only keys of length
// 48 carry parseable sub-fields; 27-character keys are opaque labels and every
// other length is left unparsed as well.
func Enrich(rows []Registro) []RegistroEnriquecido {
	enriched := make([]RegistroEnriquecido, 0, len(rows))
	for _, row := range rows {
		enriched = append(enriched, enrichRow(row))
	}
	return enriched
}

func enrichRow(row Registro) RegistroEnriquecido {
	chave, _ := row["CHAVE_NF"].(string)

	out := RegistroEnriquecido{
		OF:            stringValue(row["OF"]),
		ChaveNF:       chave,
		NF:            NotApplicable,
		CNPJ:          NotApplicable,
		CNPJFormatado: NotApplicable,
		BipadoEm:      stringValue(row["bipado_em"]),
		RemovidoEm:    stringValue(row["removido_em"]),
		// Strict test: only the literal boolean true counts as manual.
		InclusaoManual: row["INCLUSAO_MANUAL"] == true,
	}

	if len(chave) != ChaveComVolumes {
		return out
	}

	if nf, cnpj, ok := ExtractNFCNPJ(chave); ok {
		out.NF = nf
		out.CNPJ = cnpj
		out.CNPJFormatado = FormatCNPJ(cnpj)
	}

	if info, ok := ExtractVolumeInfo(chave); ok {
		volAtual := info.VolumeAtual
		totalVol := info.TotalVolumes
		out.VolumeAtual = &volAtual
		out.TotalVolumes = &totalVol
		out.BaseNF = info.Base
	}

	return out
}
