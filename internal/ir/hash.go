package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes keep invocation and completion hashes from colliding.
const (
	DomainInvocation = "arithprobe/invocation/v1"
	DomainCompletion = "arithprobe/completion/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// InvocationID computes the content-addressed ID of an invocation.
func InvocationID(flowToken string, action ActionRef, args Object, seq int64) (string, error) {
	obj := Object{
		"flow_token": String(flowToken),
		"action_uri": String(action),
		"args":       args,
		"seq":        Int(seq),
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("invocation id: %w", err)
	}
	return hashWithDomain(DomainInvocation, canonical), nil
}

// CompletionID computes the content-addressed ID of a completion.
func CompletionID(invocationID, outputCase string, result Object, seq int64) (string, error) {
	obj := Object{
		"invocation_id": String(invocationID),
		"output_case":   String(outputCase),
		"result":        result,
		"seq":           Int(seq),
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("completion id: %w", err)
	}
	return hashWithDomain(DomainCompletion, canonical), nil
}
