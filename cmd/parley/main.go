package main

import (
	"fmt"
	"os"

	"parley/internal/chat"
	"parley/internal/cli"
	"parley/internal/config"
	"parley/internal/fn"
	"parley/internal/fn/builtin"
	"parley/internal/logger"
	"parley/internal/mcp"
	"parley/internal/openai"

	"github.com/spf13/cobra"
)

var (
	configPath       string
	apiBaseURL       string
	apiKey           string
	model            string
	temperature      float32
	maxRounds        int
	allowRepeatCalls bool
	noFunctions      bool
	verbose          bool
	noColor          bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "parley",
		Short: "Parley chat completion client",
		Long:  "A chat completion client with local function calling",
	}

	chatCmd := &cobra.Command{
		Use:   "chat [prompt]",
		Short: "Ask the model, letting it call local functions",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runChat,
	}
	addCommonFlags(chatCmd)
	chatCmd.Flags().BoolVar(&allowRepeatCalls, "allow-repeat-calls", false, "Allow the model to repeat an identical function call")
	chatCmd.Flags().BoolVar(&noFunctions, "no-functions", false, "Disable function calling")

	streamCmd := &cobra.Command{
		Use:   "stream [prompt]",
		Short: "Ask the model and print the answer as it streams",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runStream,
	}
	addCommonFlags(streamCmd)

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(streamCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configPath, "config", "", "Config file path (default: parley.yaml lookup)")
	cmd.Flags().StringVar(&apiBaseURL, "api-base-url", os.Getenv("OPENAI_API_BASE_URL"), "OpenAI API base URL")
	cmd.Flags().StringVar(&apiKey, "api-key", os.Getenv("OPENAI_API_KEY"), "OpenAI API key")
	cmd.Flags().StringVar(&model, "model", "", "Model to use")
	cmd.Flags().Float32Var(&temperature, "temperature", 0.7, "Sampling temperature")
	cmd.Flags().IntVar(&maxRounds, "max-rounds", 0, "Maximum request rounds per call")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Enable verbose output (debug mode)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func setup() (*config.Config, *logger.Logger, *openai.Client, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadWithDefaults()
	}
	if err != nil {
		return nil, nil, nil, err
	}

	logLevel := logger.LevelInfo
	if verbose {
		logLevel = logger.LevelDebug
	}
	log := logger.NewLogger(os.Stdout, logLevel)
	if noColor {
		log.SetColorMode(false)
	}

	key := apiKey
	if key == "" {
		key = cfg.API.Key
	}
	if key == "" {
		return nil, nil, nil, fmt.Errorf("OpenAI API key required (set OPENAI_API_KEY, use --api-key, or configure api.key)")
	}

	baseURL := apiBaseURL
	if baseURL == "" {
		baseURL = cfg.API.BaseURL
	}

	if model == "" {
		model = cfg.Defaults.Model
	}
	if maxRounds == 0 {
		maxRounds = cfg.Defaults.MaxRounds
	}

	log.Debug("Creating client (model: %s, base URL: %s)", model, baseURL)
	client := openai.NewClient(key, baseURL)

	return cfg, log, client, nil
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, log, client, err := setup()
	if err != nil {
		return err
	}

	prompt := args[0]

	var registry *fn.Registry
	if !noFunctions {
		registry = fn.NewRegistry()
		for _, f := range []*fn.Function{builtin.Calculator(), builtin.Clock(), builtin.Weather()} {
			if err := registry.Register(f); err != nil {
				return err
			}
		}
		log.Debug("Registered %d built-in functions", registry.Len())

		if len(cfg.MCP.Servers) > 0 {
			manager := mcp.NewManager(registry, log)
			if err := manager.Initialize(cmd.Context(), cfg.MCP); err != nil {
				log.Error("MCP initialization failed: %v", err)
			}
			defer manager.Close()
		}
	}

	ctrl := chat.NewController(client, chat.Options{
		Model:            model,
		Temperature:      temperature,
		MaxRounds:        maxRounds,
		AllowRepeatCalls: allowRepeatCalls,
	}, log)

	log.SessionStart(prompt)

	resp, err := ctrl.Complete(cmd.Context(), []openai.Message{
		{Role: openai.RoleUser, Content: prompt},
	}, registry)
	if err != nil {
		log.Error("Completion failed: %v", err)
		return err
	}

	log.ModelResponse(resp.Choices[0].Message.Content)
	log.Debug("Usage: %d prompt + %d completion = %d tokens",
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)

	return nil
}

func runStream(cmd *cobra.Command, args []string) error {
	_, log, client, err := setup()
	if err != nil {
		return err
	}

	prompt := args[0]

	ctrl := chat.NewController(client, chat.Options{
		Model:       model,
		Temperature: temperature,
	}, log)

	writer := cli.NewStreamingWriter(os.Stdout)
	if noColor {
		writer.SetColorMode(false)
	}
	renderer := cli.NewStreamRenderer(writer)

	err = ctrl.CompleteStreaming(cmd.Context(), []openai.Message{
		{Role: openai.RoleUser, Content: prompt},
	}, nil, renderer.RenderChunk)
	if err != nil {
		log.Error("Streaming failed: %v", err)
		return err
	}

	renderer.RenderComplete()
	return nil
}
