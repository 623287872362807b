package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"formpulse/internal/app"
	"formpulse/internal/config"
	"formpulse/internal/model"
	"formpulse/internal/service"
	"formpulse/pkg/logger"
)

var (
	configPath string
	ownerID    string
	perForm    int
	randSeed   int64
)

var rootCmd = &cobra.Command{
	Use:          "formpulse-seed",
	Short:        "Load demo forms and random responses",
	SilenceUsage: true,
	RunE:         runSeed,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", ".", "directory containing config.yaml")
	rootCmd.Flags().StringVar(&ownerID, "owner", "demo-owner", "owner id the forms are created for")
	rootCmd.Flags().IntVarP(&perForm, "responses", "n", 25, "responses generated per form")
	rootCmd.Flags().Int64Var(&randSeed, "seed", 1, "random seed for generated answers")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, _, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.Init(cfg.Log.Level, "")
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	a, err := app.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	formSvc := service.NewFormService(a.FormRepo, a.ResponseRepo, a.AnalyticsCache)
	responseSvc := service.NewResponseService(a.FormRepo, a.ResponseRepo)
	authSvc := service.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	rng := rand.New(rand.NewSource(randSeed))

	for _, in := range demoForms() {
		form, err := formSvc.Create(ctx, ownerID, in)
		if err != nil {
			return fmt.Errorf("create %q: %w", in.Title, err)
		}
		for i := 0; i < perForm; i++ {
			req := &model.SubmitResponseRequest{Answers: randomAnswers(rng, form, i)}
			if _, err := responseSvc.Submit(ctx, form.ID, req); err != nil {
				return fmt.Errorf("submit to %q: %w", form.Title, err)
			}
		}
		logger.Log.Info("seeded form", zap.String("formId", form.ID), zap.String("title", form.Title), zap.Int("responses", perForm))
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", form.ID, form.Title)
	}

	token, err := authSvc.IssueToken(ownerID, "", 30*24*time.Hour)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nowner token for %s:\n%s\n", ownerID, token)
	return nil
}

func demoForms() []*model.FormInput {
	return []*model.FormInput{
		{
			Title:       "Customer Feedback Survey",
			Description: "Help us improve our services by sharing your feedback.",
			Questions: []model.Question{
				{ID: "q1", Type: model.QuestionTypeRating, Text: "How would you rate our service?", Required: true},
				{ID: "q2", Type: model.QuestionTypeLongText, Text: "What could we do to improve?"},
			},
		},
		{
			Title:       "Event Registration",
			Description: "Register for our upcoming annual conference.",
			Questions: []model.Question{
				{ID: "q1", Type: model.QuestionTypeShortText, Text: "Full Name", Required: true},
				{ID: "q2", Type: model.QuestionTypeShortText, Text: "Email Address", Required: true},
				{ID: "q3", Type: model.QuestionTypeSingleChoice, Text: "Dietary Restrictions", Options: []string{"None", "Vegetarian", "Vegan", "Gluten-Free"}, Required: true},
				{ID: "q4", Type: model.QuestionTypeMultiChoice, Text: "Sessions you plan to attend", Options: []string{"Keynote", "Workshops", "Networking", "Expo"}},
			},
		},
		{
			Title:       "Job Application",
			Description: "Apply for the Senior Software Engineer position.",
			Questions: []model.Question{
				{ID: "q1", Type: model.QuestionTypeShortText, Text: "Full Name", Required: true},
				{ID: "q2", Type: model.QuestionTypeFileUpload, Text: "Upload your resume", Required: true},
			},
		},
	}
}

var (
	firstNames = []string{"Ada", "Grace", "Linus", "Barbara", "Ken", "Margaret", "Dennis", "Radia"}
	lastNames  = []string{"Lovelace", "Hopper", "Torvalds", "Liskov", "Thompson", "Hamilton", "Ritchie", "Perlman"}
	comments   = []string{
		"Faster response times would help.",
		"More self-service options.",
		"Everything was great!",
		"Clearer pricing.",
		"",
	}
)

func randomAnswers(rng *rand.Rand, form *model.Form, n int) []model.Answer {
	name := firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))]
	answers := make([]model.Answer, 0, len(form.Questions))
	for _, q := range form.Questions {
		var v model.AnswerValue
		switch q.Type {
		case model.QuestionTypeRating:
			v = model.NumberValue(float64(1 + rng.Intn(5)))
		case model.QuestionTypeSingleChoice:
			v = model.StringValue(q.Options[rng.Intn(len(q.Options))])
		case model.QuestionTypeMultiChoice:
			var picked []string
			for _, o := range q.Options {
				if rng.Intn(2) == 0 {
					picked = append(picked, o)
				}
			}
			v = model.ListValue(picked...)
		case model.QuestionTypeLongText:
			v = model.StringValue(comments[rng.Intn(len(comments))])
		case model.QuestionTypeFileUpload:
			v = model.StringValue(fmt.Sprintf("/uploads/seed/resume-%d.pdf", n+1))
		case model.QuestionTypeShortText:
			if q.Text == "Email Address" {
				v = model.StringValue(fmt.Sprintf("attendee%d@example.com", n+1))
			} else {
				v = model.StringValue(name)
			}
		}
		if v.Kind() == model.ValueNone {
			continue
		}
		answers = append(answers, model.Answer{QuestionID: q.ID, Value: v})
	}
	return answers
}
