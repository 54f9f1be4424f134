// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"errors"
	"fmt"
)

// Error taxonomy of the core. Every error a caller can act on wraps exactly
// one of these, so callers match with [errors.Is] against the class and,
// where needed, against the specific sentinel below.
var (
	// ErrValidation marks malformed or out-of-range input.
	ErrValidation = errors.New("validation error")

	// ErrDuplicate marks a uniqueness violation within a group.
	ErrDuplicate = errors.New("duplicate")

	// ErrAuthorization is returned for every denied privileged read. It never
	// says which check failed.
	ErrAuthorization = errors.New("access denied")

	// ErrEncryption marks a ciphertext that failed integrity or key checks.
	ErrEncryption = errors.New("encryption error")

	// ErrNotFound marks an absent group, identity or assignment.
	ErrNotFound = errors.New("not found")

	// ErrGeneration is returned when the pseudonym space of a group is
	// exhausted.
	ErrGeneration = errors.New("pseudonym generation failed")

	// ErrConsistency marks a detected invariant violation that needs operator
	// repair.
	ErrConsistency = errors.New("consistency violation")
)

var (
	ErrGroupNotFound      = fmt.Errorf("group %w", ErrNotFound)
	ErrIdentityNotFound   = fmt.Errorf("identity %w", ErrNotFound)
	ErrAssignmentNotFound = fmt.Errorf("assignment %w", ErrNotFound)

	ErrIdentityExists  = fmt.Errorf("%w: identity already exists in group", ErrDuplicate)
	ErrPseudonymExists = fmt.Errorf("%w: pseudonym already taken in group", ErrDuplicate)

	ErrInvalidName         = fmt.Errorf("%w: invalid participant name", ErrValidation)
	ErrInvalidPseudonym    = fmt.Errorf("%w: invalid pseudonym", ErrValidation)
	ErrInvalidOwnerID      = fmt.Errorf("%w: invalid owner id", ErrValidation)
	ErrInvalidGroupID      = fmt.Errorf("%w: invalid group id", ErrValidation)
	ErrInvalidItem         = fmt.Errorf("%w: invalid item", ErrValidation)
	ErrQuantityNotPositive = fmt.Errorf("%w: quantity must be positive", ErrValidation)
	ErrNegativePrice       = fmt.Errorf("%w: unit price must not be negative", ErrValidation)
	ErrAmountNotPositive   = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrInvalidMethod       = fmt.Errorf("%w: unsupported payment method", ErrValidation)
	ErrInvalidStatus       = fmt.Errorf("%w: unsupported status", ErrValidation)
	ErrConsumptionExceeded = fmt.Errorf("%w: consumed quantity would exceed assigned quantity", ErrValidation)
	ErrAmendBelowConsumed  = fmt.Errorf("%w: quantity cannot drop below consumed quantity", ErrValidation)
	ErrAmountOverflow      = fmt.Errorf("%w: amount out of range", ErrValidation)
	ErrInactiveIdentity    = fmt.Errorf("%w: identity is inactive", ErrValidation)
	ErrKeyRequired         = fmt.Errorf("%w: group key required", ErrValidation)
	ErrInvalidKeyFormat    = fmt.Errorf("%w: malformed key", ErrValidation)
	ErrNoParticipantGiven  = fmt.Errorf("%w: participant is required", ErrValidation)
	ErrRefundExceedsPaid   = fmt.Errorf("%w: refund exceeds amount paid", ErrValidation)

	ErrPlaintextAndCipher    = fmt.Errorf("%w: identity holds plaintext and ciphertext", ErrConsistency)
	ErrIdentityWithoutCipher = fmt.Errorf("%w: identity has no ciphertext", ErrConsistency)
)
