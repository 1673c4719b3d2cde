// Package seeds fills a fresh database with demo accounts and content.
// Everything goes through the services, so seeding follows the same rules as the API.
package seeds

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	moduleDTO "portalku_backend/internals/features/academics/modules/dto"
	moduleService "portalku_backend/internals/features/academics/modules/service"
	videoDTO "portalku_backend/internals/features/academics/videos/dto"
	videoService "portalku_backend/internals/features/academics/videos/service"
	authDTO "portalku_backend/internals/features/users/auth/dto"
	authService "portalku_backend/internals/features/users/auth/service"
	"portalku_backend/internals/features/users/session"
	helper "portalku_backend/internals/helpers"
	"portalku_backend/internals/helpers/apperr"
)

const DefaultFile = "internals/seeds/data_portal.json"

type ModuleSeed struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	OwnerEmail  string  `json:"owner_email"`
}

type VideoSeed struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	OwnerEmail string `json:"owner_email"`
}

type Data struct {
	Users   []authDTO.RegisterRequest `json:"users"`
	Modules []ModuleSeed              `json:"modules"`
	Videos  []VideoSeed               `json:"videos"`
}

type Services struct {
	Auth    *authService.Service
	Modules *moduleService.Service
	Videos  *videoService.Service
}

type Stats struct {
	Users   int
	Modules int
	Videos  int
	Skipped int
}

func LoadFile(path string) (*Data, error) {
	log.Println("📥 Membaca file seed:", path)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read seed file")
	}
	var d Data
	if err := sonic.Unmarshal(raw, &d); err != nil {
		return nil, errors.Wrap(err, "decode seed file")
	}
	return &d, nil
}

// Run is idempotent: existing emails, module titles and video urls are skipped.
func Run(ctx context.Context, svc Services, d *Data) (Stats, error) {
	var st Stats
	owners := map[string]session.Principal{}

	for _, u := range d.Users {
		res, err := svc.Auth.SignUp(ctx, u)
		if err != nil {
			if !apperr.Is(err, apperr.KindValidation) {
				return st, errors.Wrapf(err, "seed user %s", u.Email)
			}
			// sudah terdaftar: login untuk dapat principal-nya
			res, err = svc.Auth.SignIn(ctx, authDTO.LoginRequest{Email: u.Email, Password: u.Password})
			if err != nil {
				return st, errors.Wrapf(err, "seed user %s", u.Email)
			}
			log.Printf("ℹ️ User '%s' sudah ada, dilewati.", u.Email)
			st.Skipped++
		} else {
			log.Printf("✅ Berhasil insert user '%s'", u.Email)
			st.Users++
		}
		owners[strings.ToLower(strings.TrimSpace(u.Email))] = res.User
	}

	owner := func(email string) (session.Principal, error) {
		p, ok := owners[strings.ToLower(strings.TrimSpace(email))]
		if !ok {
			return session.Principal{}, errors.Errorf("owner %q is not in the users list", email)
		}
		return p, nil
	}

	titles, urls, err := existing(ctx, svc)
	if err != nil {
		return st, err
	}

	for _, m := range d.Modules {
		if titles[m.Title] {
			st.Skipped++
			continue
		}
		p, err := owner(m.OwnerEmail)
		if err != nil {
			return st, err
		}
		if _, err := svc.Modules.Create(ctx, p, moduleDTO.CreateModuleRequest{Title: m.Title, Description: m.Description}); err != nil {
			return st, errors.Wrapf(err, "seed module %q", m.Title)
		}
		titles[m.Title] = true
		st.Modules++
	}

	for _, v := range d.Videos {
		if urls[v.URL] {
			st.Skipped++
			continue
		}
		p, err := owner(v.OwnerEmail)
		if err != nil {
			return st, err
		}
		if _, err := svc.Videos.Add(ctx, p, videoDTO.CreateVideoRequest{Title: v.Title, URL: v.URL}); err != nil {
			return st, errors.Wrapf(err, "seed video %q", v.Title)
		}
		urls[v.URL] = true
		st.Videos++
	}

	log.Printf("[SEED] users=%d modules=%d videos=%d skipped=%d", st.Users, st.Modules, st.Videos, st.Skipped)
	return st, nil
}

func existing(ctx context.Context, svc Services) (map[string]bool, map[string]bool, error) {
	page := helper.Paging{Page: 1, PerPage: 1000, Offset: 0, Limit: 1000}
	mods, _, err := svc.Modules.List(ctx, page)
	if err != nil {
		return nil, nil, err
	}
	vids, _, err := svc.Videos.List(ctx, page)
	if err != nil {
		return nil, nil, err
	}
	titles := make(map[string]bool, len(mods))
	for _, m := range mods {
		titles[m.Title] = true
	}
	urls := make(map[string]bool, len(vids))
	for _, v := range vids {
		urls[v.URL] = true
	}
	return titles, urls, nil
}
