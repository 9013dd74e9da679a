package payments

import (
	"encoding/json"
	"strings"

	dErrors "indy/pkg/domain-errors"
)

const addressPrefix = "pay"

// Output is one entry of an outputs list.
type Output struct {
	Recipient string `json:"recipient"`
	Amount    uint64 `json:"amount"`
	Extra     string `json:"extra,omitempty"`
}

// MethodFromAddress returns the method named by a "pay:<method>:<rest>"
// address, source or receipt.
func MethodFromAddress(address string) (string, error) {
	parts := strings.SplitN(address, ":", 3)
	if len(parts) != 3 || parts[0] != addressPrefix || parts[1] == "" || parts[2] == "" {
		return "", dErrors.Newf(dErrors.CodePaymentIncompatibleMethods, "%q does not name a payment method", address)
	}
	return parts[1], nil
}

func methodSet(addresses []string) (map[string]struct{}, error) {
	out := map[string]struct{}{}
	for _, a := range addresses {
		m, err := MethodFromAddress(a)
		if err != nil {
			return nil, err
		}
		out[m] = struct{}{}
	}
	return out, nil
}

func parseInputs(inputsJSON string) ([]string, error) {
	if inputsJSON == "" {
		return nil, nil
	}
	var inputs []string
	if err := json.Unmarshal([]byte(inputsJSON), &inputs); err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "inputs must be a list of sources")
	}
	return inputs, nil
}

func parseOutputs(outputsJSON string) ([]Output, error) {
	if outputsJSON == "" {
		return nil, nil
	}
	var outputs []Output
	if err := json.Unmarshal([]byte(outputsJSON), &outputs); err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "outputs must be a list of {recipient, amount}")
	}
	for _, o := range outputs {
		if o.Recipient == "" {
			return nil, dErrors.New(dErrors.CodeInvalidStructure, "output has no recipient")
		}
	}
	return outputs, nil
}

// MethodFromInputsOutputs resolves the method of an operation over inputs
// and outputs. Each side must name a single method and, when both are
// present, the same one.
func MethodFromInputsOutputs(inputsJSON, outputsJSON string) (string, error) {
	inputs, err := parseInputs(inputsJSON)
	if err != nil {
		return "", err
	}
	outputs, err := parseOutputs(outputsJSON)
	if err != nil {
		return "", err
	}
	recipients := make([]string, len(outputs))
	for i, o := range outputs {
		recipients[i] = o.Recipient
	}
	in, err := methodSet(inputs)
	if err != nil {
		return "", err
	}
	out, err := methodSet(recipients)
	if err != nil {
		return "", err
	}
	if len(in) > 1 || len(out) > 1 {
		return "", dErrors.New(dErrors.CodePaymentIncompatibleMethods, "inputs and outputs mix payment methods")
	}
	for m := range in {
		if _, ok := out[m]; len(out) > 0 && !ok {
			return "", dErrors.New(dErrors.CodePaymentIncompatibleMethods, "inputs and outputs use different payment methods")
		}
		return m, nil
	}
	for m := range out {
		return m, nil
	}
	return "", dErrors.New(dErrors.CodePaymentIncompatibleMethods, "no input or output names a payment method")
}
