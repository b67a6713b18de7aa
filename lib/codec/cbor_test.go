// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package codec

import (
	"bytes"
	"testing"
)

// sampleRecord is shaped like the cache's alias records, the main
// consumer of this package.
type sampleRecord struct {
	Alias   string `cbor:"alias"`
	Data    string `cbor:"data"`
	Process string `cbor:"process,omitempty"`
	Refs    int    `cbor:"refs"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleRecord{
		Alias:   "770509e6-85f4-432c-9663-cdc04eb07db2.1",
		Data:    "770509e6-85f4-432c-9663-cdc04eb07db2",
		Process: "4081-1692600000",
		Refs:    2,
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	if len(data) == 0 {
		t.Fatal("Marshal produced empty output")
	}

	var decoded sampleRecord
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	record := sampleRecord{
		Alias:   "a.1",
		Data:    "a",
		Process: "99-5",
		Refs:    7,
	}

	first, err := Marshal(record)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}

	second, err := Marshal(record)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestEncoderDecoderStreamRoundtrip(t *testing.T) {
	records := []sampleRecord{
		{Alias: "a.1", Data: "a", Process: "10-1", Refs: 1},
		{Alias: "b.1", Data: "b", Process: "10-1", Refs: 2},
		{Alias: "c.1", Data: "c", Refs: 0},
	}

	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	for i, want := range records {
		var got sampleRecord
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode record %d: %v", i, err)
		}
		if got != want {
			t.Errorf("record %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestOmitemptyRespected(t *testing.T) {
	// A zero-value omitempty field should not appear in output.
	withProcess := sampleRecord{Alias: "a", Data: "d", Process: "x", Refs: 1}
	withoutProcess := sampleRecord{Alias: "a", Data: "d", Refs: 1}

	dataWith, err := Marshal(withProcess)
	if err != nil {
		t.Fatal(err)
	}
	dataWithout, err := Marshal(withoutProcess)
	if err != nil {
		t.Fatal(err)
	}

	if len(dataWithout) >= len(dataWith) {
		t.Errorf("omitempty not effective: without=%d bytes, with=%d bytes",
			len(dataWithout), len(dataWith))
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var record sampleRecord
	err := Unmarshal([]byte{0xFF, 0xFE, 0xFD}, &record)
	if err == nil {
		t.Error("Unmarshal should reject invalid CBOR")
	}
}

func TestAnyTargetDecodesStringKeyedMap(t *testing.T) {
	// Inspecting a record without its schema must yield
	// map[string]any, not map[interface{}]interface{}.
	data, err := Marshal(sampleRecord{Alias: "a", Data: "d", Refs: 1})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	fields, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded type = %T, want map[string]any", decoded)
	}
	if fields["alias"] != "a" {
		t.Errorf("alias = %v, want %q", fields["alias"], "a")
	}
}

func BenchmarkMarshal(b *testing.B) {
	record := sampleRecord{
		Alias:   "770509e6-85f4-432c-9663-cdc04eb07db2.1",
		Data:    "770509e6-85f4-432c-9663-cdc04eb07db2",
		Process: "4081-1692600000",
		Refs:    2,
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Marshal(record)
	}
}

func BenchmarkUnmarshal(b *testing.B) {
	record := sampleRecord{
		Alias:   "770509e6-85f4-432c-9663-cdc04eb07db2.1",
		Data:    "770509e6-85f4-432c-9663-cdc04eb07db2",
		Process: "4081-1692600000",
		Refs:    2,
	}
	data, err := Marshal(record)
	if err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var decoded sampleRecord
		Unmarshal(data, &decoded)
	}
}
