package lexer

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"golang.org/x/text/unicode/norm"
)

// TestBOMStripping verifies that UTF-8 BOM is removed.
func TestBOMStripping(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected []byte
	}{
		{"with_bom", []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}, []byte("hi")},
		{"without_bom", []byte("hi"), []byte("hi")},
		{"empty_with_bom", []byte{0xEF, 0xBB, 0xBF}, []byte{}},
		{"empty_without_bom", []byte{}, []byte{}},
		{"partial_bom", []byte{0xEF, 0xBB, 'h', 'i'}, []byte{0xEF, 0xBB, 'h', 'i'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(tt.input)
			if !bytes.Equal(result, tt.expected) {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

// TestNFCNormalization verifies Unicode normalization of description
// strings and identifiers, which Modelica sources commonly carry
// (e.g. "längd" in a Swedish-authored Modelica.Fluid model).
func TestNFCNormalization(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already_nfc", "längd", "längd"},
		{"nfd_to_nfc", "längd", "längd"},
		{"ascii_unchanged", "length", "length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := string(Normalize([]byte(tt.input)))
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
			if !norm.NFC.IsNormalString(result) {
				t.Errorf("result is not in NFC form")
			}
		})
	}
}

func TestBOMAndNFC(t *testing.T) {
	input := append(bomUTF8, []byte("längd")...)
	expected := "längd"

	result := string(Normalize(input))
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"hello", "längd", "längd", "﻿hello"}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first := Normalize([]byte(input))
			second := Normalize(first)
			if !bytes.Equal(first, second) {
				t.Errorf("Normalize is not idempotent: first=%q, second=%q", first, second)
			}
		})
	}
}

// TestCanaryDeterministicParsing ensures lexically equivalent source
// tokenizes identically regardless of line ending or Unicode
// normalization form (spec §8.1 parse idempotence extends to encoding).
func TestCanaryDeterministicParsing(t *testing.T) {
	variants := []struct {
		name  string
		input string
	}{
		{"lf_nfc", "model M Real längd = 42; end M;"},
		{"crlf_nfc", "model M Real längd = 42; end M;"},
		{"lf_nfd", "model M Real längd = 42; end M;"},
		{"crlf_nfd", "model M Real längd = 42; end M;"},
		{"bom_lf_nfc", "﻿model M Real längd = 42; end M;"},
	}

	variants[0].input = strings.ReplaceAll(variants[0].input, " ", "\n")
	variants[1].input = strings.ReplaceAll(variants[1].input, " ", "\r\n")
	variants[2].input = strings.ReplaceAll(variants[2].input, " ", "\n")
	variants[3].input = strings.ReplaceAll(variants[3].input, " ", "\r\n")
	variants[4].input = strings.ReplaceAll(variants[4].input, " ", "\n")

	var outputs []string
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			normalized := Normalize([]byte(v.input))
			l := New(string(normalized), "test.mo")
			var tokens []Token
			for {
				tok := l.NextToken()
				tokens = append(tokens, tok)
				if tok.Type == EOF {
					break
				}
			}
			data, err := json.Marshal(tokens)
			if err != nil {
				t.Fatalf("marshal tokens: %v", err)
			}
			outputs = append(outputs, string(data))
		})
	}

	baseline := outputs[0]
	for i, out := range outputs[1:] {
		if out != baseline {
			t.Errorf("variant %d produced different tokenization than baseline", i+1)
		}
	}
}

func TestNormalizePreservesSemantics(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"component_decl", "Real x = 5;"},
		{"unicode_identifier", "Real längd = 42;"},
		{"string_literal", `"hello world"`},
		{"line_comment", "// this is a comment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l1 := New(tt.input, "test.mo")
			var tokens1 []Token
			for {
				tok := l1.NextToken()
				tokens1 = append(tokens1, tok)
				if tok.Type == EOF {
					break
				}
			}

			normalized := Normalize([]byte(tt.input))
			l2 := New(string(normalized), "test.mo")
			var tokens2 []Token
			for {
				tok := l2.NextToken()
				tokens2 = append(tokens2, tok)
				if tok.Type == EOF {
					break
				}
			}

			if len(tokens1) != len(tokens2) {
				t.Fatalf("token count mismatch: %d vs %d", len(tokens1), len(tokens2))
			}
			for i := range tokens1 {
				if tokens1[i].Type != tokens2[i].Type {
					t.Errorf("token %d type mismatch: %v vs %v", i, tokens1[i].Type, tokens2[i].Type)
				}
			}
		})
	}
}

func TestNormalizeDeterminism(t *testing.T) {
	input := []byte("﻿längd")

	var results [][]byte
	for i := 0; i < 50; i++ {
		results = append(results, Normalize(input))
	}

	baseline := results[0]
	for i, result := range results[1:] {
		if !bytes.Equal(result, baseline) {
			t.Errorf("iteration %d produced different output", i+1)
		}
	}
}
