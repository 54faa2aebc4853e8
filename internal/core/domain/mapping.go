package domain

import "strings"

// MappingEntry maps an archive-filename prefix to the canonical
// requirements-file name of the package it belongs to.
type MappingEntry struct {
	Prefix string
	Name   string
}

// PackageMapping is the hand-maintained table from archive-filename prefixes
// to requirements names. Archive filenames escape hyphens to underscores, so
// the mapping cannot be derived mechanically; add one entry per custom-built
// package. Keep prefixes including the trailing hyphen so that "torch-" does
// not swallow unrelated distributions.
var PackageMapping = []MappingEntry{
	{Prefix: "torch-", Name: "torch"},
	{Prefix: "torchvision-", Name: "torchvision"},
	{Prefix: "torchaudio-", Name: "torchaudio"},
	{Prefix: "triton-", Name: "triton"},
	{Prefix: "pytorch_triton_rocm-", Name: "pytorch-triton-rocm"},
	{Prefix: "triton_kernels-", Name: "triton-kernels"},
	{Prefix: "flash_attn-", Name: "flash-attn"},
	{Prefix: "xformers-", Name: "xformers"},
	{Prefix: "amdsmi-", Name: "amdsmi"},
	{Prefix: "aiter-", Name: "aiter"},
}

// MatchPrefix returns the mapping entry with the longest prefix matching the
// given archive filename, or false when no entry matches.
func MatchPrefix(filename string) (MappingEntry, bool) {
	var best MappingEntry
	found := false
	for _, e := range PackageMapping {
		if strings.HasPrefix(filename, e.Prefix) && len(e.Prefix) > len(best.Prefix) {
			best = e
			found = true
		}
	}
	return best, found
}
