package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const usageLine = "qexpand [flags] [<api key> <engine id>] <precision> <query>"

var errUsage = errors.New("invalid arguments")

// invocation is the parsed positional part of the command line.
type invocation struct {
	APIKey    string
	EngineID  string
	Precision float64
	Query     []string
}

func parseInvocation(args []string) (invocation, error) {
	var inv invocation
	var precision, query string
	switch len(args) {
	case 4:
		inv.APIKey, inv.EngineID, precision, query = args[0], args[1], args[2], args[3]
	case 2:
		precision, query = args[0], args[1]
	default:
		return inv, fmt.Errorf("%w: expected 2 or 4 arguments, got %d", errUsage, len(args))
	}

	p, err := strconv.ParseFloat(strings.TrimSpace(precision), 64)
	if err != nil || math.IsNaN(p) || p < 0 || p > 1 {
		return inv, fmt.Errorf("%w: precision must be a number between 0 and 1, got %q", errUsage, precision)
	}
	inv.Precision = p

	inv.Query = strings.Fields(query)
	if len(inv.Query) == 0 {
		return inv, fmt.Errorf("%w: query is empty", errUsage)
	}
	return inv, nil
}
