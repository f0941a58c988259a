package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AayushRajthala99/phishing-email-detection-system/internal/adapters/classifier"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/logging"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/utils"
	"go.uber.org/zap"
)

var (
	vectorizerPath = flag.String("vectorizer", "models/tfidf_vectorizer.json", "Path to the TF-IDF vectorizer artifact")
	classifierPath = flag.String("classifier", "models/spam_classifier.json", "Path to the classifier artifact")
	inputFile      = flag.String("file", "", "Input email file (use stdin if not specified)")
	verbose        = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog        = flag.Bool("json-log", false, "Output logs in JSON format")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	engine := classifier.NewEngine(*vectorizerPath, *classifierPath, utils.NewTextProcessor(logger), logger)
	if ready, err := engine.Ready(); !ready {
		logger.Fatal("Failed to load model artifacts", zap.Error(err))
	}

	subject, body, err := readEmail(*inputFile)
	if err != nil {
		logger.Fatal("Failed to read input", zap.Error(err))
	}

	result, err := engine.Classify(context.Background(), subject, body)
	if err != nil {
		logger.Fatal("Classification failed", zap.Error(err))
	}

	fmt.Printf("prediction:       %s\n", result.Prediction)
	fmt.Printf("confidence:       %.4f\n", result.Confidence)
	fmt.Printf("spam probability: %.4f\n", result.SpamProbability)
	fmt.Printf("ham probability:  %.4f\n", result.HamProbability)
}

// readEmail splits an input into subject and body. A leading "Subject:"
// header becomes the subject; otherwise the first line does.
func readEmail(path string) (string, string, error) {
	var reader io.Reader
	if path == "" {
		reader = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", "", err
		}
		defer f.Close()
		reader = f
	}

	var subject string
	var body strings.Builder

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			if strings.HasPrefix(strings.ToLower(line), "subject:") {
				subject = strings.TrimSpace(line[len("subject:"):])
				continue
			}
			subject = strings.TrimSpace(line)
			continue
		}
		body.WriteString(line)
		body.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return "", "", err
	}

	return subject, strings.TrimSpace(body.String()), nil
}
