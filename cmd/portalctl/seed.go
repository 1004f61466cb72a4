package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"siteportal/internal/domain/access"
	"siteportal/internal/domain/auth"
	"siteportal/internal/domain/project"
)

type demoWeek struct {
	title   string
	date    string
	summary string
	stats   project.Stats
	media   []project.AddMediaRequest
}

type demoProject struct {
	req   project.CreateProjectRequest
	weeks []demoWeek
}

var demoProjects = []demoProject{
	{
		req: project.CreateProjectRequest{
			Name:        "Riverside Residence",
			ClientName:  "Aigerim Nurlanovna",
			Location:    "Almaty, Al-Farabi Ave",
			AccessCode:  "1111",
			Description: "Three storey family house with basement garage.",
		},
		weeks: []demoWeek{
			{
				title: "Excavation", date: "2024-04-01",
				summary: "Site cleared and excavated to basement level.",
				stats:   project.Stats{Completion: 8, WorkersOnSite: 6, Weather: "Sunny"},
				media: []project.AddMediaRequest{
					{Kind: project.MediaPhoto, URL: "https://images.example.com/riverside/excavation.jpg", Description: "North side"},
				},
			},
			{
				title: "Foundation", date: "2024-04-08",
				summary: "Footings poured, waterproofing started.",
				stats:   project.Stats{Completion: 17, WorkersOnSite: 11, Weather: "Cloudy"},
				media: []project.AddMediaRequest{
					{Kind: project.MediaVideo, URL: "https://images.example.com/riverside/pour.mp4", Description: "Drone pass"},
					{Kind: project.MediaPanoramic, URL: "https://images.example.com/riverside/pano.jpg", Description: "Basement"},
				},
			},
		},
	},
	{
		req: project.CreateProjectRequest{
			Name:        "Tech Park Block C",
			ClientName:  "Nomad Development",
			Location:    "Astana, Mangilik El",
			AccessCode:  "2024",
			Description: "Office block, steel frame, 6 floors.",
		},
		weeks: []demoWeek{
			{
				title: "Steel erection", date: "2024-05-06",
				summary: "Columns up to level 3.",
				stats:   project.Stats{Completion: 35, WorkersOnSite: 24, Weather: "Windy"},
			},
		},
	},
}

func seed(ctx context.Context, e *env, reset bool, out io.Writer) error {
	if reset {
		for _, table := range []string{
			access.UnlockedProject{}.TableName(),
			access.DevicePreference{}.TableName(),
			auth.RevokedSession{}.TableName(),
			project.Project{}.TableName(),
			auth.User{}.TableName(),
		} {
			if err := e.db.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clean %s: %w", table, err)
			}
		}
		fmt.Fprintln(out, "old data removed")
	}

	authService := e.authService()
	if _, err := authService.CreateAdmin(ctx, auth.CreateAdminRequest{
		Name: "Site Admin", Email: "admin@siteportal.local", Password: "admin12345",
	}); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	fmt.Fprintln(out, "admin: admin@siteportal.local / admin12345")

	if _, err := authService.Register(ctx, auth.RegisterRequest{
		Name: "Demo Owner", Email: "owner@siteportal.local", Password: "owner12345",
	}); err != nil && !errors.Is(err, auth.ErrEmailAlreadyExists) {
		return fmt.Errorf("seed client: %w", err)
	}
	fmt.Fprintln(out, "client: owner@siteportal.local / owner12345")

	projects := project.NewService(project.NewStore(e.db))
	for _, dp := range demoProjects {
		req := dp.req
		p, err := projects.Create(ctx, &req)
		if err != nil {
			return fmt.Errorf("seed project %q: %w", dp.req.Name, err)
		}
		for i, w := range dp.weeks {
			updateID := p.Updates[0].ID
			if i == 0 {
				if _, err := projects.ApplyField(ctx, p.ID, updateID, project.SetDate(w.date)); err != nil {
					return err
				}
				if _, err := projects.ApplyField(ctx, p.ID, updateID, project.SetTitle(w.title)); err != nil {
					return err
				}
			} else {
				u, err := projects.AddWeek(ctx, p.ID, &project.AddWeekRequest{Date: w.date, Title: w.title})
				if err != nil {
					return err
				}
				updateID = u.ID
			}
			for _, op := range []project.FieldUpdate{
				project.SetSummary(w.summary),
				project.SetCompletion(w.stats.Completion),
				project.SetWorkersOnSite(w.stats.WorkersOnSite),
				project.SetWeather(w.stats.Weather),
			} {
				if _, err := projects.ApplyField(ctx, p.ID, updateID, op); err != nil {
					return fmt.Errorf("seed week %q: %w", w.title, err)
				}
			}
			for _, m := range w.media {
				m := m
				if _, err := projects.AddMediaURL(ctx, p.ID, updateID, &m); err != nil {
					return fmt.Errorf("seed media: %w", err)
				}
			}
		}
		fmt.Fprintf(out, "project %q id=%s code=%s\n", p.Name, p.ID, dp.req.AccessCode)
	}
	return nil
}
