package testserver

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/beevik/etree"
	"github.com/gin-gonic/gin"
)

// respond writes an OCS envelope in the format the caller asked for. On
// v1 the HTTP status is always 200 and the outcome lives in the meta
// status code, as on a real server.
func respond(c *gin.Context, status int, data interface{}) {
	v1 := c.Param("api") == "v1.php"
	ocsCode := status
	httpStatus := status
	if v1 {
		httpStatus = http.StatusOK
		if status < 300 {
			ocsCode = 100
		}
		if status == http.StatusUnauthorized {
			httpStatus = status
		}
	}
	if !v1 && status == http.StatusNoContent {
		c.Status(status)
		return
	}
	statusText := "ok"
	if status >= 300 {
		statusText = "failure"
	}
	meta := gin.H{"status": statusText, "statuscode": ocsCode, "message": http.StatusText(status)}
	if data == nil {
		data = gin.H{}
	}

	if c.Query("format") == "json" {
		c.JSON(httpStatus, gin.H{"ocs": gin.H{"meta": meta, "data": data}})
		return
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0"`)
	root := doc.CreateElement("ocs")
	appendValue(root.CreateElement("meta"), meta)
	appendValue(root.CreateElement("data"), data)
	body, err := doc.WriteToBytes()
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(httpStatus, "application/xml; charset=utf-8", body)
}

// appendValue renders v below el: maps become child elements in key
// order, lists become repeated <element> children, false becomes empty.
func appendValue(el *etree.Element, v interface{}) {
	switch val := v.(type) {
	case nil:
	case gin.H:
		appendValue(el, map[string]interface{}(val))
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			appendValue(el.CreateElement(k), val[k])
		}
	case []gin.H:
		for _, item := range val {
			appendValue(el.CreateElement("element"), item)
		}
	case []interface{}:
		for _, item := range val {
			appendValue(el.CreateElement("element"), item)
		}
	case []string:
		for _, item := range val {
			el.CreateElement("element").SetText(item)
		}
	case bool:
		if val {
			el.SetText("1")
		}
	default:
		el.SetText(fmt.Sprint(val))
	}
}
