package group

import "math/big"

// Identifiers of the curves of DSTU 4145-2002 annex G (polynomial basis) and
// the worked example of annex B.
const (
	DSTU_PB_163      = "DSTU_PB_163"
	DSTU_PB_167      = "DSTU_PB_167"
	DSTU_PB_173      = "DSTU_PB_173"
	DSTU_PB_179      = "DSTU_PB_179"
	DSTU_PB_191      = "DSTU_PB_191"
	DSTU_PB_233      = "DSTU_PB_233"
	DSTU_PB_257      = "DSTU_PB_257"
	DSTU_PB_307      = "DSTU_PB_307"
	DSTU_PB_367      = "DSTU_PB_367"
	DSTU_PB_431      = "DSTU_PB_431"
	DSTU_EXAMPLE_163 = "DSTU_EXAMPLE_163"
)

// standardOrder lists the polynomial basis curves in the order of the
// standard. The position is the curve index used by key stores.
var standardOrder = []string{
	DSTU_PB_163, DSTU_PB_167, DSTU_PB_173, DSTU_PB_179, DSTU_PB_191,
	DSTU_PB_233, DSTU_PB_257, DSTU_PB_307, DSTU_PB_367, DSTU_PB_431,
}

// StandardIDs returns the identifiers of every built-in curve.
func StandardIDs() []string {
	return append(append([]string(nil), standardOrder...), DSTU_EXAMPLE_163)
}

// StandardParams returns the parameters of a built-in curve.
func StandardParams(id string) (Params, bool) {
	p, ok := standardParams[id]
	if !ok {
		return Params{}, false
	}
	return p.clone(), true
}

func fromHex(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("group: invalid hex in curve table: " + s)
	}
	return v
}

var standardParams = map[string]Params{
	DSTU_PB_163: {
		ID: DSTU_PB_163, M: 163, KS: []int{7, 6, 3}, A: 1,
		B:     fromHex("5FF6108462A2DC8210AB403925E638A19C1455D21"),
		Order: fromHex("400000000000000000002BEC12BE2262D39BCF14D"),
		BaseX: fromHex("2E2F85F5DD74CE983A5C4237229DAF8A3F35823BE"),
		BaseY: fromHex("3826F008A8C51D7B95284D9D03FF0E00CE2CD723A"),
	},
	DSTU_PB_167: {
		ID: DSTU_PB_167, M: 167, KS: []int{6}, A: 1,
		B:     fromHex("6EE3CEEB230811759F20518A0930F1A4315A827DAC"),
		Order: fromHex("3FFFFFFFFFFFFFFFFFFFFFB12EBCC7D7F29FF7701F"),
		BaseX: fromHex("7A1F6653786A68192803910A3D30B2A2018B21CD54"),
		BaseY: fromHex("5F49EB26781C0EC6B8909156D98ED435E45FD59918"),
	},
	DSTU_PB_173: {
		ID: DSTU_PB_173, M: 173, KS: []int{10, 2, 1}, A: 0,
		B:     fromHex("108576C80499DB2FC16EDDF6853BBB278F6B6FB437D9"),
		Order: fromHex("800000000000000000000189B4E67606E3825BB2831"),
		BaseX: fromHex("4D41A619BCC6EADF0448FA22FAD567A9181D37389CA"),
		BaseY: fromHex("10B51CC12849B234C75E6DD2028BF7FF5C1CE0D991A1"),
	},
	DSTU_PB_179: {
		ID: DSTU_PB_179, M: 179, KS: []int{4, 2, 1}, A: 1,
		B:     fromHex("4A6E0856526436F2F88DD07A341E32D04184572BEB710"),
		Order: fromHex("3FFFFFFFFFFFFFFFFFFFFFFB981960435FE5AB64236EF"),
		BaseX: fromHex("6BA06FE51464B2BD26DC57F48819BA9954667022C7D03"),
		BaseY: fromHex("25FBC363582DCEC065080CA8287AAFF09788A66DC3A9E"),
	},
	DSTU_PB_191: {
		ID: DSTU_PB_191, M: 191, KS: []int{9}, A: 1,
		B:     fromHex("7BC86E2102902EC4D5890E8B6B4981FF27E0482750FEFC03"),
		Order: fromHex("40000000000000000000000069A779CAC1DABC6788F7474F"),
		BaseX: fromHex("714114B762F2FF4A7912A6D2AC58B9B5C2FCFE76DAEB7129"),
		BaseY: fromHex("29C41E568B77C617EFE5902F11DB96FA9613CD8D03DB08DA"),
	},
	DSTU_PB_233: {
		ID: DSTU_PB_233, M: 233, KS: []int{9, 4, 1}, A: 1,
		B:     fromHex("06973B15095675534C7CF7E64A21BD54EF5DD3B8A0326AA936ECE454D2C"),
		Order: fromHex("1000000000000000000000000000013E974E72F8A6922031D2603CFE0D7"),
		BaseX: fromHex("3FCDA526B6CDF83BA1118DF35B3C31761D3545F32728D003EEB25EFE96"),
		BaseY: fromHex("9CA8B57A934C54DEEDA9E54A7BBAD95E3B2E91C54D32BE0B9DF96D8D35"),
	},
	DSTU_PB_257: {
		ID: DSTU_PB_257, M: 257, KS: []int{12}, A: 0,
		B:     fromHex("1CEF494720115657E18F938D7A7942394FF9425C1458C57861F9EEA6ADBE3BE10"),
		Order: fromHex("800000000000000000000000000000006759213AF182E987D3E17714907D470D"),
		BaseX: fromHex("02A29EF207D0E9B6C55CD260B306C7E007AC491CA1B10C62334A9E8DCD8D20FB7"),
		BaseY: fromHex("10686D41FF744D4449FCCF6D8EEA03102E6812C93A9D60B978B702CF156D814EF"),
	},
	DSTU_PB_307: {
		ID: DSTU_PB_307, M: 307, KS: []int{8, 4, 2}, A: 1,
		B:     fromHex("393C7F7D53666B5054B5E6C6D3DE94F4296C0C599E2E2E241050DF18B6090BDC90186904968BB"),
		Order: fromHex("3FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFC079C2F3825DA70D390FBBA588D4604022B7B7"),
		BaseX: fromHex("216EE8B189D291A0224984C1E92F1D16BF75CCD825A087A239B276D3167743C52C02D6E7232AA"),
		BaseY: fromHex("5D9306BACD22B7FAEB09D2E049C6E2866C5D1677762A8F2F2DC9A11C7F7BE8340AB2237C7F2A0"),
	},
	DSTU_PB_367: {
		ID: DSTU_PB_367, M: 367, KS: []int{21}, A: 1,
		B:     fromHex("43FC8AD242B0B7A6F3D1627AD5654447556B47BF6AA4A64B0C2AFE42CADAB8F93D92394C79A79755437B56995136"),
		Order: fromHex("40000000000000000000000000000000000000000000009C300B75A3FA824F22428FD28CE8812245EF44049B2D49"),
		BaseX: fromHex("324A6EDDD512F08C49A99AE0D3F961197A76413E7BE81A400CA681E09639B5FE12E59A109F78BF4A373541B3B9A1"),
		BaseY: fromHex("1AB597A5B4477F59E39539007C7F977D1A567B92B043A49C6B61984C3FE3481AAF454CD41BA1F051626442B3C10"),
	},
	DSTU_PB_431: {
		ID: DSTU_PB_431, M: 431, KS: []int{5, 3, 1}, A: 1,
		B:     fromHex("03CE10490F6A708FC26DFE8C3D27C4F94E690134D5BFF988D8D28AAEAEDE975936C66BAC536B18AE2DC312CA493117DAA469C640CAF3"),
		Order: fromHex("3FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFBA3175458009A8C0A724F02F81AA8A1FCBAF80D90C7A95110504CF"),
		BaseX: fromHex("1A62BA79D98133A16BBAE7ED9A8E03C32E0824D57AEF72F88986874E5AAE49C27BED49A2A95058068426C2171E99FD3B43C5947C857D"),
		BaseY: fromHex("70B5E1E14031C1F70BBEFE96BDDE66F451754B4CA5F48DA241F331AA396B8D1839A855C1769B1EA14BA53308B5E2723724E090E02DB9"),
	},
	DSTU_EXAMPLE_163: {
		ID: DSTU_EXAMPLE_163, M: 163, KS: []int{7, 6, 3}, A: 1,
		B:     fromHex("5FF6108462A2DC8210AB403925E638A19C1455D21"),
		Order: fromHex("400000000000000000002BEC12BE2262D39BCF14D"),
		BaseX: fromHex("72D867F93A93AC27DF9FF01AFFE74885C8C540420"),
		BaseY: fromHex("0224A9C3947852B97C5599D5F4AB81122ADC3FD9B"),
	},
}
