package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	intdb "carpool/internal/db"
)

type SystemHandler struct {
	DB *sql.DB
}

func (h SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "carpool backend berjalan"})
}

func (h SystemHandler) DBCheck(c *gin.Context) {
	if h.DB == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database belum terhubung"})
		return
	}
	if !intdb.HasTable(h.DB, "trip_offers") {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "table trip_offers tidak ada"})
		return
	}
	var count int
	if err := h.DB.QueryRow("SELECT COUNT(*) FROM trip_offers").Scan(&count); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "gagal query ke database: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "koneksi database OK", "trip_offers_in_db": count})
}
