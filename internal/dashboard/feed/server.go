package feed

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dashsync/internal/dashboard/store"
	"dashsync/pkg/tradeapi"
)

// NewRouter builds the read-only state API plus the websocket endpoint.
// Everything is served from store copies; handlers never block an
// apply-cycle beyond the store's read lock.
func NewRouter(st *store.Store, hub *Hub) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/state/metrics", func(c *gin.Context) {
		points, total := st.Metrics()
		c.JSON(http.StatusOK, gin.H{
			"metrics":    points,
			"totalCount": total,
			"status":     st.Status(store.StreamMetrics),
		})
	})

	r.GET("/state/pricing", func(c *gin.Context) {
		quotes := st.Quotes()
		trails := make(map[string][]float64, len(tradeapi.Symbols))
		for _, sym := range tradeapi.Symbols {
			if trail := st.PriceTrail(sym); trail != nil {
				trails[sym] = trail
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"pricing": quotes,
			"history": trails,
			"status":  st.Status(store.StreamPricing),
		})
	})

	r.GET("/state/chats", func(c *gin.Context) {
		chats, total := st.Chats()
		c.JSON(http.StatusOK, gin.H{
			"chats":      chats,
			"totalCount": total,
			"status":     st.Status(store.StreamChats),
		})
	})

	r.GET("/state/trades", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"trades": st.Trades(),
			"status": st.Status(store.StreamTrades),
		})
	})

	r.GET("/ws", func(c *gin.Context) {
		hub.ServeWS(c.Writer, c.Request)
	})

	return r
}
