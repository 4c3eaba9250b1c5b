package pkg

import (
	"reflect"
	"testing"
)

var (
	mtXml     = "application/xml"
	mtTextXml = "text/xml"
	mtAtom    = "application/atom+xml"
	mtJson    = "application/json"

	wAll    = "*/*"
	wApp    = "application/*"
	wXml    = "*+xml"
	wSuffix = "*/xml"
)

func Test_MediaTypeStore_Match(t *testing.T) {
	routes := []struct {
		pattern string
		search  string
		result  any
	}{
		// exactly
		{mtXml, mtXml, true},
		{mtXml, "Application/XML; charset=utf-8", true},
		{mtXml, mtTextXml, nil},
		{mtXml, mtAtom, nil},
		{mtTextXml, mtXml, nil},
		{mtTextXml, mtTextXml, true},

		// wildcards
		{wAll, mtXml, true},
		{wAll, mtJson, true},
		{wApp, mtXml, true},
		{wApp, mtAtom, true},
		{wApp, mtTextXml, nil},
		{wXml, mtAtom, true},
		{wXml, mtXml, nil},
		{wXml, "+xml", nil},
		{wSuffix, mtXml, true},
		{wSuffix, mtTextXml, true},
		{wSuffix, mtAtom, nil},
	}
	for _, tt := range routes {
		t.Run(tt.pattern+" "+tt.search, func(t *testing.T) {
			s := &MediaTypeStore[any]{}
			if err := s.Insert(tt.pattern, true); err != nil {
				t.Fatalf("MediaTypeStore.Insert() | unexpected error: %v", err)
			}
			if got := s.Match(tt.search); !reflect.DeepEqual(got, tt.result) {
				t.Errorf("MediaTypeStore.Match() | invalid result\n   actual: %v\n expected: %v", got, tt.result)
			}
		})
	}
}

func Test_MediaTypeStore_MatchAll(t *testing.T) {
	s := &MediaTypeStore[string]{}
	for _, pattern := range []string{wAll, wXml, mtAtom, wApp} {
		if err := s.Insert(pattern, pattern); err != nil {
			t.Fatalf("MediaTypeStore.Insert() | unexpected error: %v", err)
		}
	}

	got := s.MatchAll(mtAtom)
	expected := []string{mtAtom, wApp, wXml, wAll}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("MediaTypeStore.MatchAll() | invalid result\n   actual: %v\n expected: %v", got, expected)
	}

	if got := s.Match(mtAtom); got != mtAtom {
		t.Errorf("MediaTypeStore.Match() | invalid result\n   actual: %v\n expected: %v", got, mtAtom)
	}

	if got := s.Match("application/json"); got != wApp {
		t.Errorf("MediaTypeStore.Match() | invalid result\n   actual: %v\n expected: %v", got, wApp)
	}
}

func Test_MediaTypeStore_Insert(t *testing.T) {
	s := &MediaTypeStore[int]{}

	if err := s.Insert(" ", 1); err != ErrInvalidPattern {
		t.Errorf("MediaTypeStore.Insert() | invalid error\n   actual: %v\n expected: %v", err, ErrInvalidPattern)
	}
	if err := s.Insert("application/*+xml", 1); err != ErrInvalidSplatPattern {
		t.Errorf("MediaTypeStore.Insert() | invalid error\n   actual: %v\n expected: %v", err, ErrInvalidSplatPattern)
	}
	if err := s.Insert("*/*+xml", 1); err != ErrInvalidSplatPattern {
		t.Errorf("MediaTypeStore.Insert() | invalid error\n   actual: %v\n expected: %v", err, ErrInvalidSplatPattern)
	}
	if err := s.Insert(mtXml, 1); err != nil {
		t.Errorf("MediaTypeStore.Insert() | unexpected error: %v", err)
	}
	if err := s.Insert("APPLICATION/XML", 2); err != ErrItemAlreadyExist {
		t.Errorf("MediaTypeStore.Insert() | invalid error\n   actual: %v\n expected: %v", err, ErrItemAlreadyExist)
	}
	if err := s.Insert(wXml, 3); err != nil {
		t.Errorf("MediaTypeStore.Insert() | unexpected error: %v", err)
	}
	if err := s.Insert(wXml, 4); err != ErrItemAlreadyExist {
		t.Errorf("MediaTypeStore.Insert() | invalid error\n   actual: %v\n expected: %v", err, ErrItemAlreadyExist)
	}

	if v, found := s.Get(wXml); !found || v != 3 {
		t.Errorf("MediaTypeStore.Get() | invalid result\n   actual: %v %v\n expected: %v %v", v, found, 3, true)
	}
	if v, found := s.Get(mtXml); !found || v != 1 {
		t.Errorf("MediaTypeStore.Get() | invalid result\n   actual: %v %v\n expected: %v %v", v, found, 1, true)
	}
	if _, found := s.Get(mtJson); found {
		t.Errorf("MediaTypeStore.Get() | unexpected item for %s", mtJson)
	}
}
