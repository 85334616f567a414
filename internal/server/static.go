package server

import (
	"bytes"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

// contentTypes maps file extensions to the Content-Type sent for them.
// Anything else is served as application/octet-stream.
var contentTypes = map[string]string{
	".html":        "text/html",
	".css":         "text/css",
	".js":          "application/javascript",
	".json":        "application/json",
	".txt":         "text/plain",
	".png":         "image/png",
	".jpg":         "image/jpeg",
	".jpeg":        "image/jpeg",
	".gif":         "image/gif",
	".svg":         "image/svg+xml",
	".ico":         "image/x-icon",
	".woff":        "font/woff",
	".woff2":       "font/woff2",
	".webp":        "image/webp",
	".webmanifest": "application/manifest+json",
}

const defaultContentType = "application/octet-stream"

// ContentType returns the Content-Type for a file name based on its extension.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return defaultContentType
}

// resolve maps a URL path onto a name inside the served root. Dot segments
// are cleaned first, so only paths that still climb out of the root are
// rejected.
func resolve(urlPath string) (string, bool) {
	name := path.Clean(strings.TrimLeft(urlPath, "/"))
	if name == ".." || strings.HasPrefix(name, "../") {
		return "", false
	}
	if !fs.ValidPath(name) {
		return "", false
	}
	return name, true
}

// RegisterStaticFiles mounts root on the engine for GET and HEAD.
// Directories serve their index.html; there are no directory listings.
func RegisterStaticFiles(r *gin.Engine, root fs.FS) {
	h := staticHandler(root)
	r.GET("/*filepath", h)
	r.HEAD("/*filepath", h)

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.Header("Allow", "GET, HEAD")
		c.String(http.StatusMethodNotAllowed, "Method not allowed")
	})
}

func notFound(c *gin.Context) {
	c.String(http.StatusNotFound, "File not found")
}

func staticHandler(root fs.FS) gin.HandlerFunc {
	return func(c *gin.Context) {
		urlPath := c.Request.URL.Path
		name, ok := resolve(urlPath)
		if !ok {
			notFound(c)
			return
		}

		f, st, err := open(root, name)
		if err != nil {
			notFound(c)
			return
		}
		if st.IsDir() {
			f.Close()
			if !strings.HasSuffix(urlPath, "/") {
				target := urlPath + "/"
				if q := c.Request.URL.RawQuery; q != "" {
					target += "?" + q
				}
				c.Redirect(http.StatusMovedPermanently, target)
				return
			}
			name = path.Join(name, "index.html")
			if f, st, err = open(root, name); err != nil {
				notFound(c)
				return
			}
			if st.IsDir() {
				f.Close()
				notFound(c)
				return
			}
		}
		defer f.Close()

		content, ok := f.(io.ReadSeeker)
		if !ok {
			data, err := io.ReadAll(f)
			if err != nil {
				c.String(http.StatusInternalServerError, "read error")
				return
			}
			content = bytes.NewReader(data)
		}

		c.Header("Content-Type", ContentType(name))
		http.ServeContent(c.Writer, c.Request, name, st.ModTime(), content)
	}
}

func open(root fs.FS, name string) (fs.File, fs.FileInfo, error) {
	f, err := root.Open(name)
	if err != nil {
		return nil, nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, st, nil
}
