package views_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gravepaint/gravepaint"
	"github.com/gravepaint/gravepaint/api"
	"github.com/gravepaint/gravepaint/http/middleware"
	"github.com/gravepaint/gravepaint/http/resp"
	"github.com/gravepaint/gravepaint/http/router"
	"github.com/gravepaint/gravepaint/http/session"
	"github.com/gravepaint/gravepaint/views"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 4, 5, 6, 7, 8, 0, time.UTC)

type fakeUsers struct {
	user      gravepaint.User
	err       error
	logins    int
	registers int
}

func (f *fakeUsers) Info(ctx context.Context) (gravepaint.User, error) { return f.user, f.err }

func (f *fakeUsers) Login(ctx context.Context, username, password string) (gravepaint.User, error) {
	f.logins++
	if f.err != nil {
		return gravepaint.User{}, f.err
	}

	return gravepaint.User{ID: f.user.ID, Username: username}, nil
}

func (f *fakeUsers) Register(ctx context.Context, username, password string) (gravepaint.User, error) {
	f.registers++
	return f.Login(ctx, username, password)
}

type fakeCanvases struct {
	canvases []gravepaint.Canvas
	err      error
	saved    []gravepaint.Canvas
	getArgs  [2]int64
}

func (f *fakeCanvases) Get(ctx context.Context, userID, id int64) (gravepaint.Canvas, error) {
	f.getArgs = [2]int64{userID, id}
	if f.err != nil {
		return gravepaint.Canvas{}, f.err
	}

	for _, c := range f.canvases {
		if c.ID == id {
			return c, nil
		}
	}

	return gravepaint.Canvas{}, gravepaint.ErrNotExist
}

func (f *fakeCanvases) Load(ctx context.Context) ([]gravepaint.Canvas, error) {
	return f.canvases, f.err
}

func (f *fakeCanvases) Public(ctx context.Context) ([]gravepaint.Canvas, error) {
	if f.err != nil {
		return nil, f.err
	}

	var out []gravepaint.Canvas
	for _, c := range f.canvases {
		if c.Public() {
			out = append(out, c)
		}
	}

	return out, nil
}

func (f *fakeCanvases) Save(ctx context.Context, c gravepaint.Canvas) error {
	f.saved = append(f.saved, c)
	return f.err
}

type fakeAssistant struct {
	sources  []gravepaint.SearchSource
	err      error
	embedErr error
	embedded []int64
	queries  []api.SearchQuery
}

func (f *fakeAssistant) Embed(ctx context.Context, canvasID int64) error {
	f.embedded = append(f.embedded, canvasID)
	return f.embedErr
}

func (f *fakeAssistant) Search(ctx context.Context, q api.SearchQuery) ([]gravepaint.SearchSource, error) {
	f.queries = append(f.queries, q)
	return f.sources, f.err
}

type deps struct {
	users     *fakeUsers
	canvases  *fakeCanvases
	assistant *fakeAssistant
}

func newDeps() deps {
	return deps{
		users:     &fakeUsers{user: gravepaint.User{ID: 2, Username: "ada"}},
		canvases:  new(fakeCanvases),
		assistant: new(fakeAssistant),
	}
}

// serve routes req through the page routes, as the logged-in user id if set.
func serve(t *testing.T, d deps, id string, req *http.Request) *httptest.ResponseRecorder {
	v, err := views.New(views.Config{
		Assistant: d.assistant,
		Canvases:  d.canvases,
		Responder: resp.NewResponder(),
		Users:     d.users,
		Now:       func() time.Time { return now },
	})
	require.Nil(t, err)

	r := router.New(gravepaint.Testing, nil)
	r.OnEveryRequest(middleware.InjectSession(session.NewStubStore(id)), middleware.InjectIdentity())
	r.HandleRoutes([]router.Route{
		{Path: "/", View: http.HandlerFunc(v.Home)},
		{Path: "/Login", Methods: []string{http.MethodGet, http.MethodPost}, View: http.HandlerFunc(v.Login)},
		{Path: "/gravepaint", Methods: []string{http.MethodGet, http.MethodPost}, View: http.HandlerFunc(v.GravePaint)},
		{Path: "/gravepaint/{id}", View: http.HandlerFunc(v.GravePaint)},
		{Path: "/personal", View: http.HandlerFunc(v.Personal)},
		{Path: "/tinyStar", View: http.HandlerFunc(v.TinyStar)},
		{Path: "/customer-service", View: http.HandlerFunc(v.CustomerService)},
		{Path: "/canvas/view/{id}", Name: "CanvasView", View: http.HandlerFunc(v.CanvasView)},
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonReq(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Accept", "application/json")
	return req
}

// props decodes the props a page handed the Vue client.
func props(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	var body struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data
}

func TestNew(t *testing.T) {
	// Act
	v, err := views.New(views.Config{})

	// Assert
	require.ErrorIs(t, err, gravepaint.ErrBadConfig)
	require.Nil(t, v)

	// Arrange
	d := newDeps()

	// Act
	v, err = views.New(views.Config{Assistant: d.assistant, Canvases: d.canvases, Users: d.users})

	// Assert
	require.ErrorIs(t, err, gravepaint.ErrBadConfig)
	require.Nil(t, v)
}

func TestHome(t *testing.T) {
	// Act
	w := serve(t, newDeps(), "", httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `data-component="HomePage"`)
}

func TestLogin(t *testing.T) {
	t.Run("Render", func(t *testing.T) {
		// Act
		w := serve(t, newDeps(), "", httptest.NewRequest(http.MethodGet, "/Login", nil))

		// Assert
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `data-component="LoginRegister"`)
	})

	t.Run("Form", func(t *testing.T) {
		// Arrange
		form := url.Values{"username": {"ada"}, "password": {"hunter2"}}
		req := httptest.NewRequest(http.MethodPost, "/Login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		// Act
		w := serve(t, newDeps(), "", req)

		// Assert
		require.Equal(t, http.StatusFound, w.Code)
		require.Equal(t, views.PersonalPath, w.Header().Get("Location"))
	})

	t.Run("Register-Json", func(t *testing.T) {
		// Arrange
		d := newDeps()
		req := jsonReq(http.MethodPost, "/Login")
		req.Body = httptestBody(`{"username":"grace","password":"pw","mode":"register"}`)
		req.Header.Set("Content-Type", "application/json")

		// Act
		w := serve(t, d, "", req)

		// Assert
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, 1, d.users.registers)
		require.JSONEq(t, `{"currentUser":{"id":2,"username":"grace"}}`, w.Body.String())
	})

	t.Run("Bad-Credentials", func(t *testing.T) {
		// Arrange
		d := newDeps()
		d.users.err = &api.Error{StatusCode: http.StatusOK, Message: "wrong password"}
		form := url.Values{"username": {"ada"}, "password": {"nope"}}
		req := httptest.NewRequest(http.MethodPost, "/Login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		// Act
		w := serve(t, d, "", req)

		// Assert
		require.Equal(t, http.StatusSeeOther, w.Code)
		require.Equal(t, views.LoginPath, w.Header().Get("Location"))
	})

	t.Run("Bad-Credentials-Json", func(t *testing.T) {
		// Arrange
		d := newDeps()
		d.users.err = &api.Error{StatusCode: http.StatusOK, Message: "wrong password"}
		req := jsonReq(http.MethodPost, "/Login")
		req.Body = httptestBody(`{"username":"ada","password":"nope"}`)
		req.Header.Set("Content-Type", "application/json")

		// Act
		w := serve(t, d, "", req)

		// Assert
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.JSONEq(t, `{"data":{"error":"`+session.BadCredsMsg+`"}}`, w.Body.String())
	})

	t.Run("Backend-Failures", func(t *testing.T) {
		tcs := []struct {
			name string
			err  error
			code int
		}{
			{"Timeout", fmt.Errorf("primary: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
			{"Unreachable", errors.New("connection refused"), http.StatusBadGateway},
			{"Server-Error", &api.Error{StatusCode: http.StatusInternalServerError, Message: "boom"}, http.StatusInternalServerError},
		}

		for _, tc := range tcs {
			t.Run(tc.name, func(t *testing.T) {
				// Arrange
				d := newDeps()
				d.users.err = tc.err
				req := jsonReq(http.MethodPost, "/Login")
				req.Body = httptestBody(`{"username":"ada","password":"pw"}`)
				req.Header.Set("Content-Type", "application/json")

				// Act
				w := serve(t, d, "", req)

				// Assert
				require.Equal(t, tc.code, w.Code)
				require.NotContains(t, w.Body.String(), session.BadCredsMsg)
			})
		}
	})

	t.Run("Missing-Password", func(t *testing.T) {
		// Arrange
		d := newDeps()
		req := jsonReq(http.MethodPost, "/Login")
		req.Body = httptestBody(`{"username":"ada"}`)
		req.Header.Set("Content-Type", "application/json")

		// Act
		w := serve(t, d, "", req)

		// Assert
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.JSONEq(t, `{"data":{
			"error":"`+session.BadCredsMsg+`",
			"validationErrors":[{"field":"password","got":"","rule":"required; string"}]
		}}`, w.Body.String())
		require.Zero(t, d.users.logins)
	})

	t.Run("Unknown-Mode", func(t *testing.T) {
		// Arrange
		d := newDeps()
		form := url.Values{"username": {"ada"}, "password": {"pw"}, "mode": {"reset"}}
		req := httptest.NewRequest(http.MethodPost, "/Login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		// Act
		w := serve(t, d, "", req)

		// Assert
		require.Equal(t, http.StatusSeeOther, w.Code)
		require.Equal(t, views.LoginPath, w.Header().Get("Location"))
		require.Zero(t, d.users.logins)
		require.Zero(t, d.users.registers)
	})

	t.Run("Malformed-Json", func(t *testing.T) {
		// Arrange
		req := jsonReq(http.MethodPost, "/Login")
		req.Body = httptestBody(`{`)
		req.Header.Set("Content-Type", "application/json")

		// Act
		w := serve(t, newDeps(), "", req)

		// Assert
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGravePaint(t *testing.T) {
	t.Run("Blank", func(t *testing.T) {
		// Act
		w := serve(t, newDeps(), "", jsonReq(http.MethodGet, "/gravepaint"))

		// Assert
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "null", string(props(t, w)["canvas"]))
	})

	t.Run("With-ID", func(t *testing.T) {
		// Arrange
		d := newDeps()
		d.canvases.canvases = []gravepaint.Canvas{{ID: 42, Title: "moonrise"}}

		// Act
		w := serve(t, d, "2", jsonReq(http.MethodGet, "/gravepaint/42"))

		// Assert
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, [2]int64{2, 42}, d.canvases.getArgs)

		var c gravepaint.Canvas
		require.Nil(t, json.Unmarshal(props(t, w)["canvas"], &c))
		require.Equal(t, "moonrise", c.Title)
	})

	t.Run("Unknown-ID", func(t *testing.T) {
		// Act
		w := serve(t, newDeps(), "", jsonReq(http.MethodGet, "/gravepaint/7"))

		// Assert
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Bad-ID", func(t *testing.T) {
		// Act
		w := serve(t, newDeps(), "", jsonReq(http.MethodGet, "/gravepaint/moon"))

		// Assert
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Save", func(t *testing.T) {
		// Arrange
		d := newDeps()
		req := jsonReq(http.MethodPost, "/gravepaint")
		req.Body = httptestBody(`{"id":5,"title":"dawn","texts":[{"id":1,"content":"hi"}]}`)

		// Act
		w := serve(t, d, "2", req)

		// Assert
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, d.canvases.saved, 1)
		require.EqualValues(t, 2, d.canvases.saved[0].UserID)
		require.Equal(t, []int64{5}, d.assistant.embedded)
	})

	t.Run("Save-Indexing-Fails", func(t *testing.T) {
		// Arrange
		d := newDeps()
		d.assistant.embedErr = errors.New("assistant down")
		req := jsonReq(http.MethodPost, "/gravepaint")
		req.Body = httptestBody(`{"id":5}`)

		// Act
		w := serve(t, d, "2", req)

		// Assert
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, d.canvases.saved, 1)
	})

	t.Run("Save-Bad-Visibility", func(t *testing.T) {
		// Arrange
		d := newDeps()
		req := jsonReq(http.MethodPost, "/gravepaint")
		req.Body = httptestBody(`{"id":5,"isPublic":3}`)

		// Act
		w := serve(t, d, "2", req)

		// Assert
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), `"field":"isPublic"`)
		require.Empty(t, d.canvases.saved)
	})

	t.Run("Save-Missing-ID", func(t *testing.T) {
		// Arrange
		d := newDeps()
		req := jsonReq(http.MethodPost, "/gravepaint")
		req.Body = httptestBody(`{"title":"dawn"}`)

		// Act
		w := serve(t, d, "2", req)

		// Assert
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), `"field":"id"`)
		require.Empty(t, d.canvases.saved)
		require.Empty(t, d.assistant.embedded)
	})

	t.Run("Save-Anonymous", func(t *testing.T) {
		// Arrange
		d := newDeps()
		req := jsonReq(http.MethodPost, "/gravepaint")
		req.Body = httptestBody(`{"id":5}`)

		// Act
		w := serve(t, d, "", req)

		// Assert
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Empty(t, d.canvases.saved)
	})
}

func TestPersonal(t *testing.T) {
	t.Run("Anonymous", func(t *testing.T) {
		// Act
		w := serve(t, newDeps(), "", httptest.NewRequest(http.MethodGet, "/personal", nil))

		// Assert
		require.Equal(t, http.StatusFound, w.Code)
		require.Equal(t, views.LoginPath, w.Header().Get("Location"))
	})

	t.Run("Session-Expired-Upstream", func(t *testing.T) {
		// Arrange
		d := newDeps()
		d.users.err = &api.Error{StatusCode: http.StatusOK, Message: "not logged in"}

		// Act
		w := serve(t, d, "2", jsonReq(http.MethodGet, "/personal"))

		// Assert
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Logged-In", func(t *testing.T) {
		// Arrange
		d := newDeps()
		d.canvases.canvases = []gravepaint.Canvas{{ID: 1}, {ID: 2}}

		// Act
		w := serve(t, d, "2", jsonReq(http.MethodGet, "/personal"))

		// Assert
		require.Equal(t, http.StatusOK, w.Code)
		p := props(t, w)
		require.JSONEq(t, `{"id":2,"username":"ada"}`, string(p["user"]))

		var canvases []gravepaint.Canvas
		require.Nil(t, json.Unmarshal(p["canvases"], &canvases))
		require.Len(t, canvases, 2)
	})

	t.Run("Backend-Down", func(t *testing.T) {
		// Arrange
		d := newDeps()
		d.canvases.err = &api.Error{StatusCode: http.StatusServiceUnavailable, Message: "maintenance"}

		// Act
		w := serve(t, d, "2", jsonReq(http.MethodGet, "/personal"))

		// Assert
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		require.Equal(t, `"maintenance"`, string(props(t, w)["error"]))
	})
}

func TestTinyStar(t *testing.T) {
	// Arrange
	d := newDeps()
	d.canvases.canvases = []gravepaint.Canvas{
		{ID: 1, IsPublic: 1, Heritages: []gravepaint.Heritage{
			{ID: 1, PublicTime: gravepaint.Timestamp{Time: now.Add(-time.Hour)}},
			{ID: 2, PublicTime: gravepaint.Timestamp{Time: now.Add(time.Hour)}},
		}},
		{ID: 2},
	}

	// Act
	w := serve(t, d, "", jsonReq(http.MethodGet, "/tinyStar"))

	// Assert
	require.Equal(t, http.StatusOK, w.Code)

	var canvases []gravepaint.Canvas
	require.Nil(t, json.Unmarshal(props(t, w)["canvases"], &canvases))
	require.Len(t, canvases, 1)
	require.EqualValues(t, 1, canvases[0].ID)
	require.Len(t, canvases[0].Heritages, 1)
}

func TestCustomerService(t *testing.T) {
	t.Run("No-Query", func(t *testing.T) {
		// Arrange
		d := newDeps()

		// Act
		w := serve(t, d, "", jsonReq(http.MethodGet, "/customer-service"))

		// Assert
		require.Equal(t, http.StatusOK, w.Code)
		require.Empty(t, d.assistant.queries)
	})

	t.Run("Query", func(t *testing.T) {
		// Arrange
		d := newDeps()
		d.assistant.sources = []gravepaint.SearchSource{{CanvasID: 4, Title: "stars"}}

		// Act
		w := serve(t, d, "2", jsonReq(http.MethodGet, "/customer-service?q=stars"))

		// Assert
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, []api.SearchQuery{{Query: "stars", UserID: 2}}, d.assistant.queries)

		var sources []gravepaint.SearchSource
		require.Nil(t, json.Unmarshal(props(t, w)["sources"], &sources))
		require.Equal(t, d.assistant.sources, sources)
	})

	t.Run("Query-Too-Long", func(t *testing.T) {
		// Arrange
		d := newDeps()

		// Act
		w := serve(t, d, "", jsonReq(http.MethodGet, "/customer-service?q="+strings.Repeat("a", 501)))

		// Assert
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Empty(t, d.assistant.queries)
	})

	t.Run("Assistant-Timeout", func(t *testing.T) {
		// Arrange
		d := newDeps()
		d.assistant.err = fmt.Errorf("assistant: %w", context.DeadlineExceeded)

		// Act
		w := serve(t, d, "", jsonReq(http.MethodGet, "/customer-service?q=stars"))

		// Assert
		require.Equal(t, http.StatusGatewayTimeout, w.Code)
	})

	t.Run("Assistant-Down", func(t *testing.T) {
		// Arrange
		d := newDeps()
		d.assistant.err = errors.New("connection refused")

		// Act
		w := serve(t, d, "", jsonReq(http.MethodGet, "/customer-service?q=stars"))

		// Assert
		require.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestCanvasView(t *testing.T) {
	// Arrange
	d := newDeps()
	d.canvases.canvases = []gravepaint.Canvas{{
		ID: 9,
		Heritages: []gravepaint.Heritage{{
			ID:         1,
			PublicTime: gravepaint.Timestamp{Time: now.Add(-time.Minute)},
			Items: []gravepaint.HeritageItem{
				{ID: 1, Content: "for all"},
				{ID: 2, Content: "for ada", IsPrivate: true, UserID: 2},
			},
		}},
	}}

	tcs := []struct {
		name  string
		id    string
		items int
	}{
		{"Anonymous", "", 1},
		{"Addressee", "2", 2},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			w := serve(t, d, tc.id, jsonReq(http.MethodGet, "/canvas/view/9"))

			// Assert
			require.Equal(t, http.StatusOK, w.Code)

			var c gravepaint.Canvas
			require.Nil(t, json.Unmarshal(props(t, w)["canvas"], &c))
			require.Len(t, c.Heritages, 1)
			require.Len(t, c.Heritages[0].Items, tc.items)
		})
	}
}
