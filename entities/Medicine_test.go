package entities

import (
	"slices"
	"testing"
	"time"
)

func TestNewMedicinePlaceholders(t *testing.T) {
	m := NewMedicine(MedicineFields{Name: "  Advil  "})

	if m.ID == "" {
		t.Error("Expected a generated ID")
	}
	if m.Name != "Advil" {
		t.Errorf("Expected trimmed name Advil, got %q", m.Name)
	}
	if m.Description != PlaceholderDescription {
		t.Errorf("Expected description placeholder, got %q", m.Description)
	}
	if m.Dosage != PlaceholderDosage {
		t.Errorf("Expected dosage placeholder, got %q", m.Dosage)
	}
	if !slices.Equal(m.Warnings, []string{PlaceholderWarning}) {
		t.Errorf("Expected warning placeholder, got %v", m.Warnings)
	}
	if !slices.Equal(m.SideEffects, []string{PlaceholderSideEffects}) {
		t.Errorf("Expected side effects placeholder, got %v", m.SideEffects)
	}
	if m.UsageInstructions != PlaceholderUsage {
		t.Errorf("Expected usage placeholder, got %q", m.UsageInstructions)
	}
	if m.Alternatives == nil || len(m.Alternatives) != 0 {
		t.Errorf("Expected empty non-nil alternatives, got %v", m.Alternatives)
	}
}

func TestNewMedicineKeepsValues(t *testing.T) {
	warnings := []string{"Do not exceed the stated dose"}
	m := NewMedicine(MedicineFields{
		Name:                 "Advil",
		Description:          "Pain reliever",
		Alternatives:         []string{"Motrin", "advil", "Ibuprofen"},
		Rxcui:                "310965",
		Dosage:               "1 tablet every 4 to 6 hours",
		Warnings:             warnings,
		RequiresPrescription: false,
		SideEffects:          []string{"Nausea"},
		UsageInstructions:    "Take with food",
	})

	if !slices.Equal(m.Alternatives, []string{"Motrin", "Ibuprofen"}) {
		t.Errorf("Expected [Motrin Ibuprofen], got %v", m.Alternatives)
	}
	if m.Rxcui != "310965" {
		t.Errorf("Expected rxcui 310965, got %q", m.Rxcui)
	}

	warnings[0] = "changed"
	if m.Warnings[0] != "Do not exceed the stated dose" {
		t.Error("Expected warnings to be copied on construction")
	}
}

func TestNewMedicineFreshIDs(t *testing.T) {
	a := NewMedicine(MedicineFields{Name: "Advil"})
	b := NewMedicine(MedicineFields{Name: "Advil"})

	if a.ID == b.ID {
		t.Error("Expected distinct IDs for separate constructions")
	}
	if a.Equal(b) {
		t.Error("Expected records with different IDs to be unequal")
	}
	if a.NaturalKey() != b.NaturalKey() {
		t.Errorf("Expected equal natural keys, got %q and %q", a.NaturalKey(), b.NaturalKey())
	}
	if !a.Equal(a.Clone()) {
		t.Error("Expected a clone to be equal to its source")
	}
}

func TestCleanAlternatives(t *testing.T) {
	tests := []struct {
		name         string
		medicine     string
		alternatives []string
		expected     []string
	}{
		{"nil input", "Advil", nil, []string{}},
		{"drops empties", "Advil", []string{"", "  ", "Motrin"}, []string{"Motrin"}},
		{"drops name", "Advil", []string{"ADVIL", "Motrin"}, []string{"Motrin"}},
		{"folds duplicates", "Advil", []string{"Motrin", "motrin", "MOTRIN IB"}, []string{"Motrin", "MOTRIN IB"}},
		{"keeps order", "Tylenol", []string{"Panadol", "Acetaminophen"}, []string{"Panadol", "Acetaminophen"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanAlternatives(tt.medicine, tt.alternatives)
			if !slices.Equal(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestNewFallbackMedicine(t *testing.T) {
	m := NewFallbackMedicine("XyzUnknown")

	if m.Name != "XyzUnknown" {
		t.Errorf("Expected name XyzUnknown, got %q", m.Name)
	}
	if m.Description != PlaceholderFallbackDesc {
		t.Errorf("Expected fallback description, got %q", m.Description)
	}
	if !m.RequiresPrescription {
		t.Error("Expected fallback to require a prescription")
	}
	if m.Rxcui != "" {
		t.Errorf("Expected empty rxcui, got %q", m.Rxcui)
	}
	if len(m.Alternatives) != 0 {
		t.Errorf("Expected no alternatives, got %v", m.Alternatives)
	}
	if m.UsageInstructions != PlaceholderFallbackUsage {
		t.Errorf("Expected fallback usage, got %q", m.UsageInstructions)
	}
}

func TestNewFallbackMedicineNameNeverEmpty(t *testing.T) {
	tests := []struct {
		query    string
		expected string
	}{
		{"", UnknownMedicineName},
		{"   ", UnknownMedicineName},
		{"  Zorblax ", "Zorblax"},
	}

	for _, tt := range tests {
		if got := NewFallbackMedicine(tt.query).Name; got != tt.expected {
			t.Errorf("NewFallbackMedicine(%q): expected name %q, got %q", tt.query, tt.expected, got)
		}
	}
}

func TestCloneMedicinesIsDeep(t *testing.T) {
	if CloneMedicines(nil) != nil {
		t.Error("Expected nil for nil input")
	}

	src := []Medicine{NewMedicine(MedicineFields{Name: "Advil", Alternatives: []string{"Motrin"}})}
	dst := CloneMedicines(src)
	dst[0].Alternatives[0] = "changed"

	if src[0].Alternatives[0] != "Motrin" {
		t.Error("Expected clone not to share alternatives")
	}
}

func TestNewSearchHistoryEntry(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	results := []Medicine{NewMedicine(MedicineFields{Name: "Advil", SideEffects: []string{"Nausea"}})}

	entry := NewSearchHistoryEntry("advil", results, at)
	results[0].SideEffects[0] = "changed"

	if entry.ID == "" {
		t.Error("Expected a generated ID")
	}
	if !entry.Timestamp.Equal(at) {
		t.Errorf("Expected timestamp %v, got %v", at, entry.Timestamp)
	}
	if entry.Results[0].SideEffects[0] != "Nausea" {
		t.Error("Expected entry to hold a copy of the results")
	}

	clone := entry.Clone()
	clone.Results[0].Name = "changed"
	if entry.Results[0].Name != "Advil" {
		t.Error("Expected Clone not to share results")
	}
}

func TestFoldKey(t *testing.T) {
	if FoldKey("  Advil ") != FoldKey("ADVIL") {
		t.Error("Expected case and surrounding space to be ignored")
	}
	if FoldKey("Éphédrine") != FoldKey("éPHÉDRINE") {
		t.Error("Expected accented letters to fold")
	}
}
