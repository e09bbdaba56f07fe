package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/mcoot/multiplayer-demo/internal/model"
)

// SpectatorData is everything the spectator page renders server-side
type SpectatorData struct {
	Area    model.Area
	Players []*model.Player
	// FeedURL is the SSE endpoint the page follows for live updates
	FeedURL string
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// PlayerSquare renders one avatar positioned absolutely within the area
func PlayerSquare(p *model.Player, avatarSize float64) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.str(`<div class="player" id="player-`)
		ew.esc(string(p.ID))
		ew.str(`" data-player-id="`)
		ew.esc(string(p.ID))
		ew.str(`" title="`)
		ew.esc(p.Name)
		ew.str(`" style="`)
		ew.esc(fmt.Sprintf("left:%s;top:%s;width:%s;height:%s;background:%s",
			px(p.X), px(p.Y), px(avatarSize), px(avatarSize), p.Color))
		ew.str(`"><span>`)
		ew.esc(p.Name)
		ew.str(`</span></div>`)
		return ew.err
	})
}

func playerCount(n int) string {
	if n == 1 {
		return "1 player"
	}
	return strconv.Itoa(n) + " players"
}

// Spectator renders the full-window view of every player
func Spectator(data SpectatorData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.str(`<div id="area" data-avatar="`)
		ew.esc(strconv.FormatFloat(data.Area.AvatarSize, 'f', -1, 64))
		ew.str(`" data-feed="`)
		ew.esc(data.FeedURL)
		ew.str(`" style="`)
		ew.esc("width:" + px(data.Area.Width) + ";height:" + px(data.Area.Height))
		ew.str(`">`)
		for _, p := range data.Players {
			ew.component(ctx, PlayerSquare(p, data.Area.AvatarSize))
		}
		ew.str(`</div><p id="count">`)
		ew.esc(playerCount(len(data.Players)))
		ew.str(`</p><script>`)
		ew.str(feedScript)
		ew.str(`</script>`)
		return ew.err
	})
	return Layout("Multiplayer Demo", body)
}

// feedScript mirrors PlayerSquare client-side for feed events
const feedScript = `
(function () {
  var area = document.getElementById("area");
  var size = area.dataset.avatar + "px";
  function upsert(p) {
    var el = document.getElementById("player-" + p.id);
    if (!el) {
      el = document.createElement("div");
      el.className = "player";
      el.id = "player-" + p.id;
      el.dataset.playerId = p.id;
      el.appendChild(document.createElement("span"));
      area.appendChild(el);
    }
    el.style.left = p.x + "px";
    el.style.top = p.y + "px";
    el.style.width = size;
    el.style.height = size;
    el.style.background = p.color;
    el.title = p.name;
    el.firstChild.textContent = p.name;
  }
  function remove(p) {
    var el = document.getElementById("player-" + p.id);
    if (el) { el.remove(); }
  }
  function count() {
    var n = area.children.length;
    document.getElementById("count").textContent = n + (n === 1 ? " player" : " players");
  }
  var feed = new EventSource(area.dataset.feed);
  feed.addEventListener("snapshot", function (e) {
    area.replaceChildren();
    (JSON.parse(e.data).players || []).forEach(upsert);
    count();
  });
  ["insert", "update"].forEach(function (t) {
    feed.addEventListener(t, function (e) { upsert(JSON.parse(e.data).player); count(); });
  });
  feed.addEventListener("delete", function (e) { remove(JSON.parse(e.data).player); count(); });
})();
`
