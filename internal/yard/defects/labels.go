package defects

// DefaultFilterLabels is the set of open-defect labels the reporting service
// is queried for. The wording matches the service's repair code labels
// verbatim, accents included.
var DefaultFilterLabels = []string{
	"ABERTO: ASPECTO",
	"ABERTO: DEF FUNCIONAMENTO",
	"ABERTO: DEF MECANICO",
	"ABERTO: DEFEITO GSAO",
	"ABERTO: DEGRADAÇÃO",
	"ABERTO: ENCHIMENTO",
	"ABERTO: ESTANQUEIDADE",
	"ABERTO: GEOMETRIA",
	"ABERTO: RUIDO",
	"ABERTO: DEF ELETRICO",
	"DEFEITO ABERTO ELÉTRICO",
	"DEFEITO ABERTO RUÍDOS",
	"DEFEITO ABERTO S.A.O",
	"DEFEITO ABERTO: SAO",
}
