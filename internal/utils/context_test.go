// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"context"
	"testing"
)

func TestContextKeyString(t *testing.T) {
	key := contextKey("testKey")
	if key.String() != "testKey" {
		t.Errorf("expected 'testKey', got '%s'", key.String())
	}
}

func TestRequesterIDCtxKey(t *testing.T) {
	if RequesterIDCtxKey.String() != "requesterID" {
		t.Errorf("expected 'requesterID', got '%s'", RequesterIDCtxKey.String())
	}
}

func TestGetRequesterIDFromContext_Success(t *testing.T) {
	ctx := WithRequesterID(context.Background(), "tg:42")

	requesterID, ok := GetRequesterIDFromContext(ctx)

	if !ok {
		t.Fatal("expected ok=true, got false")
	}
	if requesterID != "tg:42" {
		t.Errorf("expected requesterID=tg:42, got %s", requesterID)
	}
}

func TestGetRequesterIDFromContext_Missing(t *testing.T) {
	requesterID, ok := GetRequesterIDFromContext(context.Background())

	if ok {
		t.Fatal("expected ok=false, got true")
	}
	if requesterID != "" {
		t.Errorf("expected empty requesterID, got %s", requesterID)
	}
}

func TestGetRequesterIDFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), RequesterIDCtxKey, int64(42))

	if _, ok := GetRequesterIDFromContext(ctx); ok {
		t.Fatal("expected ok=false for wrong type, got true")
	}
}

func TestGetRequesterIDFromContext_Empty(t *testing.T) {
	ctx := WithRequesterID(context.Background(), "")

	if _, ok := GetRequesterIDFromContext(ctx); ok {
		t.Fatal("expected ok=false for empty value, got true")
	}
}

func TestGetRequesterIDFromContext_DifferentKey(t *testing.T) {
	ctx := context.WithValue(context.Background(), contextKey("otherKey"), "tg:99")

	if _, ok := GetRequesterIDFromContext(ctx); ok {
		t.Fatal("expected ok=false for different key, got true")
	}
}
