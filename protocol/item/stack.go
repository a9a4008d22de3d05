// Package item holds the portable item stack value.
package item

import (
	"fmt"

	"github.com/wippyai/hostbridge/protocol/nbt"
)

// Stack is a version-independent item stack. The zero Stack is empty.
type Stack struct {
	NBT    *nbt.Compound
	ID     int32
	Amount int32
}

// Empty is the canonical empty stack.
var Empty = Stack{}

// IsEmpty reports whether the stack holds no items.
func (s Stack) IsEmpty() bool {
	return s.ID == 0 || s.Amount <= 0
}

// Equal compares stacks. All empty stacks are equal.
func (s Stack) Equal(o Stack) bool {
	if s.IsEmpty() || o.IsEmpty() {
		return s.IsEmpty() && o.IsEmpty()
	}
	return s.ID == o.ID && s.Amount == o.Amount && s.NBT.Equal(o.NBT)
}

func (s Stack) String() string {
	if s.IsEmpty() {
		return "ItemStack(empty)"
	}
	if s.NBT == nil {
		return fmt.Sprintf("ItemStack(id=%d, amount=%d)", s.ID, s.Amount)
	}
	return fmt.Sprintf("ItemStack(id=%d, amount=%d, nbt=%d entries)", s.ID, s.Amount, s.NBT.Len())
}
