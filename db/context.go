package db

import (
	"github.com/gin-gonic/gin"
)

const storeKey = "round_store"

// SetStoreToContext deixa o RoundStore disponível para os handlers que só
// precisam de leitura do histórico (get-all-words, health).
func SetStoreToContext(store *RoundStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(storeKey, store)
		c.Next()
	}
}

func StoreInstance(c *gin.Context) *RoundStore {
	v, ok := c.Get(storeKey)
	if !ok {
		return nil
	}
	store, _ := v.(*RoundStore)
	return store
}
