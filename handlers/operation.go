package handlers

import "strings"

// Operation is the action a request target selects
type Operation int

const (
	OpUnknown Operation = iota
	OpHome
	OpSearchDrug
	OpListDrugs
	OpSearchCompany
	OpListCompanies
	OpListWarnings
)

var operationNames = map[Operation]string{
	OpUnknown:       "unknown",
	OpHome:          "home",
	OpSearchDrug:    "searchDrug",
	OpListDrugs:     "listDrugs",
	OpSearchCompany: "searchCompany",
	OpListCompanies: "listCompanies",
	OpListWarnings:  "listWarnings",
}

func (op Operation) String() string {
	if name, ok := operationNames[op]; ok {
		return name
	}
	return "unknown"
}

// dispatchOrder is the order substrings are tried in; the first hit wins
var dispatchOrder = []Operation{
	OpSearchDrug,
	OpListDrugs,
	OpSearchCompany,
	OpListCompanies,
	OpListWarnings,
}

// SelectOperation picks the operation for a raw request target (path plus
// query). Matching is by substring anywhere in the target, so
// /listWarningsExtra and /?x=listDrugs both select an operation.
func SelectOperation(target string) Operation {
	if target == "/" {
		return OpHome
	}
	for _, op := range dispatchOrder {
		if strings.Contains(target, op.String()) {
			return op
		}
	}
	return OpUnknown
}
