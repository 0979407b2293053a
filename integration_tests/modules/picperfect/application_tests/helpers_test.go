package application_tests

import (
	"context"
	"testing"

	picperfectservice "github.com/Black-And-White-Club/pic-perfect/app/modules/picperfect/application"
	statedb "github.com/Black-And-White-Club/pic-perfect/app/modules/state/infrastructure/repositories"
	teamdb "github.com/Black-And-White-Club/pic-perfect/app/modules/team/infrastructure/repositories"
	"github.com/Black-And-White-Club/pic-perfect/integration_tests/testutils"
	"github.com/Black-And-White-Club/pic-perfect/pkg/eventbus"
	"github.com/stretchr/testify/require"
)

const (
	challengeID  = "integration-2026"
	hiddenURL    = "https://images.example.com/hidden.png"
	hiddenPrompt = "a lighthouse made of cheese"
)

type serviceDeps struct {
	env *testutils.TestEnvironment
	svc *picperfectservice.PicPerfectService
	bus eventbus.EventBus
}

// setupService resets the database and builds a service against Postgres
// with an in-process bus.
func setupService(t *testing.T) serviceDeps {
	t.Helper()
	env := testutils.GetTestEnv(t)
	env.Reset(t)

	bus := eventbus.NewInProcessBus(env.Observability.Logger)
	t.Cleanup(func() { _ = bus.Close() })

	svc := picperfectservice.NewPicPerfectService(
		env.DBService.Repositories(),
		bus,
		env.Observability.Logger,
		env.Observability.Metrics,
		env.Observability.Tracer,
		env.DB,
		picperfectservice.DefaultRules(),
	)
	return serviceDeps{env: env, svc: svc, bus: bus}
}

func (d serviceDeps) registerTeams(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, d.env.DBService.TeamDB.Create(d.env.Ctx, nil, &teamdb.Team{TeamName: name}))
	}
}

func (d serviceDeps) start(t *testing.T, teams ...string) {
	t.Helper()
	d.registerTeams(t, teams...)
	_, err := d.svc.StartChallenge(d.env.Ctx, challengeID, hiddenURL, hiddenPrompt, nil)
	require.NoError(t, err)
}

func (d serviceDeps) submitAll(t *testing.T, teams ...string) {
	t.Helper()
	for _, team := range teams {
		_, err := d.svc.SubmitTeamImage(d.env.Ctx, challengeID, team, "https://images.example.com/"+team+".png", team+" prompt")
		require.NoError(t, err, "submit %s", team)
	}
}

func (d serviceDeps) transition(t *testing.T, target statedb.ChallengeState) {
	t.Helper()
	_, err := d.svc.TransitionChallengeState(context.Background(), challengeID, target)
	require.NoError(t, err)
}
