package log

const (
	KeyAppName      = "app"
	KeyTag          = "tag"
	KeyProcess      = "process"
	KeyConfig       = "config"
	KeyEmail        = "email"
	KeyUserID       = "userId"
	KeyOrderID      = "orderId"
	KeyProductID    = "productId"
	KeyQuery        = "query"
	KeyCacheKey     = "cacheKey"
	KeyProductCount = "productCount"
	KeyOrderCount   = "orderCount"
	KeyCollection   = "collection"
	KeyDocumentKey  = "documentKey"
)
