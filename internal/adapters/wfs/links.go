package wfs

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/samirrijal/geosearch/internal/core/domain"
)

const (
	videoThumbWidth  = 348
	videoThumbHeight = 300

	// DefaultThumbnailSize is the edge length of imagery thumbnails in pixels.
	DefaultThumbnailSize = 256
)

var mpgPattern = regexp.MustCompile(`(?i)mpg`)

// decorateVideo adds the playback and thumbnail links of a video record.
func (c *Client) decorateVideo(p *domain.FeatureProperties) {
	base := path.Base(p.Filename)
	if loc := mpgPattern.FindStringIndex(base); loc != nil {
		base = base[:loc[0]] + "mp4" + base[loc[1]:]
	}
	id := strconv.FormatInt(p.ID, 10)

	p.VideoName = base
	p.VideoURL = c.serverURL + "/videos/" + base
	p.RequestThumbnailURL = c.serverURL + "/omar-stager/videoDataSet/getThumbnail?id=" + id +
		"&w=" + strconv.Itoa(videoThumbWidth) + "&h=" + strconv.Itoa(videoThumbHeight) + "&type=jpeg"
	p.PlayerURL = c.serverURL + "/omar-video-ui?filter=in(" + id + ")"
	p.Type = fileExt(p.Filename)
}

func decorateRaster(p *domain.FeatureProperties) {
	if p.ImageID != "" {
		p.TLVURL = TLVURL(p.ImageID)
	}
}

// fileExt returns the text after the last dot, or the whole name when there is none.
func fileExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// TLVURL is the viewer link that opens a single image.
func TLVURL(imageID string) string {
	return "/tlv/?filter=in(" + imageID + ")"
}

// ThumbnailRequest identifies the record a thumbnail is requested for.
type ThumbnailRequest struct {
	EntryID             string
	Filename            string
	ID                  string
	Type                string
	RequestThumbnailURL string
	Size                int
}

// ThumbnailURL picks the thumbnail link for a record: mpg videos carry their
// own, everything else goes through the image space service.
func (c *Client) ThumbnailURL(r ThumbnailRequest) string {
	if r.Type == "mpg" && r.RequestThumbnailURL != "" {
		return r.RequestThumbnailURL
	}
	if r.Size <= 0 {
		r.Size = DefaultThumbnailSize
	}

	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)

	args.Set("entry", r.EntryID)
	args.Set("filename", r.Filename)
	args.Set("id", r.ID)
	args.Set("outputFormat", "jpeg")
	args.Set("padThumbnail", "false")
	args.Set("size", strconv.Itoa(r.Size))
	args.Set("transparent", "false")

	return c.serverURL + "/omar-oms/imageSpace/getThumbnail?" + args.String()
}
