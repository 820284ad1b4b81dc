package wikirace

import (
	"bytes"
	"math/rand"
	"testing"
)

func randomPair() (PageID, PageID) {
	return PageID(rand.Uint32()), PageID(rand.Uint32())
}

func randomByteSlice(length int) []byte {
	slc := make([]byte, length)
	rand.Read(slc)
	return slc
}

func copyByteSlice(slc []byte) []byte {
	cpy := make([]byte, len(slc))
	copy(cpy, slc)
	return cpy
}

func TestResultCacheStandard(t *testing.T) {
	cache, _ := NewResultCache(128)

	s1, g1 := randomPair()
	result1 := randomByteSlice(100)
	cache.Store(s1, g1, result1)
	if !bytes.Equal(cache.Fetch(s1, g1), result1) {
		t.Error("expected first pair to be cached")
	}

	s2, g2 := randomPair()
	result2 := randomByteSlice(24)
	cache.Store(s2, g2, result2)
	if !bytes.Equal(cache.Fetch(s1, g1), result1) {
		t.Error("expected first pair to still be cached")
	}
	if !bytes.Equal(cache.Fetch(s2, g2), result2) {
		t.Error("expected second pair to be cached")
	}

	s3, g3 := randomPair()
	result3 := randomByteSlice(20)
	cache.Store(s3, g3, result3)
	if bytes.Equal(cache.Fetch(s1, g1), result1) {
		t.Error("expected first pair to be evicted")
	}
	if !bytes.Equal(cache.Fetch(s2, g2), result2) {
		t.Error("expected second pair to be cached")
	}
	if !bytes.Equal(cache.Fetch(s3, g3), result3) {
		t.Error("expected third pair to be cached")
	}
}

func TestResultCacheLarge(t *testing.T) {
	testCount := 128
	testSize := 65536
	starts := make([]PageID, testCount)
	goals := make([]PageID, testCount)
	results := make([][]byte, testCount)
	for i := range starts {
		starts[i], goals[i] = randomPair()
		results[i] = randomByteSlice(testSize)
	}
	cache, err := NewResultCache(testCount * testSize)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	for i := range starts {
		cache.Store(starts[i], goals[i], copyByteSlice(results[i]))
	}
	for i := range starts {
		if !bytes.Equal(cache.Fetch(starts[i], goals[i]), results[i]) {
			t.Error("expected pair to be cached")
		}
	}
}

func TestResultCacheHammer(t *testing.T) {
	max := 12288
	size := 4194304
	count := 4096
	cache, _ := NewResultCache(size)
	for i := 0; i < count; i++ {
		s, g := randomPair()
		cache.Store(s, g, randomByteSlice(rand.Intn(max)))
	}
}

func TestResultCacheZeroSize(t *testing.T) {
	cache, err := NewResultCache(0)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	s, g := randomPair()
	result := randomByteSlice(1)
	cache.Store(s, g, result)
	if bytes.Equal(cache.Fetch(s, g), result) {
		t.Error("expected pair to not be cached")
	}
}

func TestResultCacheNegativeSize(t *testing.T) {
	if _, err := NewResultCache(-1); err == nil {
		t.Error("expected error on negative size")
	}
}

func TestResultCacheOversizedEntry(t *testing.T) {
	cache, err := NewResultCache(128)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	s, g := randomPair()
	result := randomByteSlice(256)
	cache.Store(s, g, result)
	if bytes.Equal(cache.Fetch(s, g), result) {
		t.Error("expected oversized entry to not remain cached")
	}
}
