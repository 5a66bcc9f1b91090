package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.True(t, isDuplicateKey(fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062})))

	assert.False(t, isDuplicateKey(&mysql.MySQLError{Number: 1213}))
	assert.False(t, isDuplicateKey(errors.New("duplicate entry")))
	assert.False(t, isDuplicateKey(nil))
}

// Deadlocks and lock wait timeouts mean the attempt lost a lock race,
// not a seat; they must be told apart from duplicate-key conflicts so
// the reservation can be retried instead of failing generically.
func TestIsLockContention(t *testing.T) {
	assert.True(t, isLockContention(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"}))
	assert.True(t, isLockContention(&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout"}))
	assert.True(t, isLockContention(fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1213})))

	assert.False(t, isLockContention(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isLockContention(errors.New("deadlock")))
	assert.False(t, isLockContention(nil))
}
