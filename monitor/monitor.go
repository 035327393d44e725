// Package monitor exposes the tail of the application log to operators.
package monitor

import (
	"bufio"
	"crypto/subtle"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultTailLines = 200
	maxTailLines     = 2000
)

// RegisterLogsRoute mounts GET /logs. It is disabled when token is empty.
func RegisterLogsRoute(router gin.IRouter, logPath, token string) {
	router.GET("/logs", func(c *gin.Context) {
		if token == "" || subtle.ConstantTimeCompare([]byte(c.Query("token")), []byte(token)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		lines := defaultTailLines
		if n, err := strconv.Atoi(c.Query("lines")); err == nil && n > 0 {
			lines = n
		}
		if lines > maxTailLines {
			lines = maxTailLines
		}

		tail, err := TailFile(logPath, lines)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to read log"})
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", tail)
	})
}

// TailFile returns the last n lines of path.
func TailFile(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ring := make([]string, 0, n)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(ring) == n {
			ring = ring[1:]
		}
		ring = append(ring, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var out []byte
	for _, line := range ring {
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out, nil
}
