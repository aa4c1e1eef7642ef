package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourceTailID(t *testing.T) {
	assert.Equal(t, "MLB123456", resourceTailID("/items/MLB123456"))
	assert.Equal(t, "2195160686", resourceTailID("/orders/2195160686"))
	assert.Equal(t, "789", resourceTailID("/users/123/invoices/789"))
	assert.Equal(t, "789", resourceTailID("orders/789/"))
}

func TestResourceNumericID(t *testing.T) {
	id, err := resourceNumericID("/orders/2195160686")
	assert.NoError(t, err)
	assert.Equal(t, int64(2195160686), id)

	_, err = resourceNumericID("/items/MLB123456")
	assert.Error(t, err)
}
