package release

// QNetDotVersion represents the dot version for qnet
var QNetDotVersion = "0.1.0"
