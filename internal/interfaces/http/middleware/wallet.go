package middleware

import (
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

const (
	// WalletHeader carries the caller's wallet address. The demo trusts the
	// header; signature-based ownership proof is a non-goal here.
	WalletHeader = "X-Wallet-Address"

	walletContextKey = "wallet_address"
)

// WalletAuthMiddleware requires a syntactically valid hex wallet address on
// the request and stores its checksummed form in the gin context.
func WalletAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet := strings.TrimSpace(c.GetHeader(WalletHeader))
		if wallet == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "wallet address required"})
			c.Abort()
			return
		}
		if !common.IsHexAddress(wallet) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid wallet address"})
			c.Abort()
			return
		}

		// lowercase is the canonical form everywhere downstream; two spellings
		// of one address must hit the same rows
		c.Set(walletContextKey, strings.ToLower(wallet))
		c.Next()
	}
}

// GetWallet returns the authenticated wallet address from the gin context.
func GetWallet(c *gin.Context) string {
	wallet, _ := c.Get(walletContextKey)
	s, _ := wallet.(string)
	return s
}
