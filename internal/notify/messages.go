package notify

import "fmt"

const signature = "\n\nSincerely,\nThe PolloPollo Project"

// Message is a composed email
type Message struct {
	Subject string
	Body    string
}

// DonationMessage tells a receiver where to pick up a donated product
func DonationMessage(productTitle, producerAddress string) Message {
	body := fmt.Sprintf("Congratulations!\n\n"+
		"A donation has just been made to fill your application for %s. "+
		"You can now go and receive the product at the shop with address: %s. "+
		"You must confirm reception of the product when you get there.\n\n"+
		"Follow these steps to confirm reception:\n"+
		"-Log on to pollopollo.org\n"+
		"-Click on your user and select \"profile\"\n"+
		"-Change \"Open applications\" to \"Pending applications\"\n"+
		"-Click on \"Confirm Receival\"\n\n"+
		"After 10-15 minutes, the confirmation goes through and the shop will be notified of your confirmation.\n\n"+
		"If you have questions or experience problems, please join https://discord.pollopollo.org "+
		"or write an email to pollopollo@pollopollo.org", productTitle, producerAddress)
	return Message{Subject: "You received a donation on PolloPollo!", Body: body + signature}
}

// ThankYouMessage is sent to a receiver once a donation is completed
func ThankYouMessage() Message {
	body := "Thank you very much for using PolloPollo.\n\n" +
		"If you have suggestions for improvements or feedback, please join our Discord server: " +
		"https://discord.pollopollo.org and let us know.\n\n" +
		"The PolloPollo project is created and maintained by volunteers. " +
		"We rely solely on the help of volunteers to grow the platform.\n\n" +
		"You can help us help more people by asking shops to join and add products that people in need can apply for." +
		"\n\nWe hope you enjoyed using PolloPollo"
	return Message{Subject: "Thank you for using PolloPollo", Body: body + signature}
}

// ProducerConfirmationMessage tells a producer that the receiver picked up the product
// and where the escrowed funds are
func ProducerConfirmationMessage(receiverName string, applicationID uint, productTitle string, bytes int64, price int, sharedAddress string) Message {
	prefix := sharedAddress
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	subject := fmt.Sprintf("%s confirmed receipt of application #%d", receiverName, applicationID)
	body := fmt.Sprintf("%s has just confirmed receipt of the product %s.\n\n"+
		"The application ID is #%d and contains %d bytes which is roughly %d USD at current rates.\n\n"+
		"To withdraw the money, open your Obyte Wallet and find the Smart Wallet address starting with %s.\n\n"+
		"Thank you for using PolloPollo and if you have suggestions for improvements, please join our Discord server: "+
		"https://discord.pollopollo.org and let us know.\n\n"+
		"The PolloPollo project is created and maintained by volunteers. "+
		"We rely solely on the help of volunteers to grow the platform.\n\n"+
		"You can help us help more people by adding more products or encouraging other shops to join "+
		"and add their products that people in need can apply for."+
		"\n\nWe hope you enjoyed using PolloPollo.",
		receiverName, productTitle, applicationID, bytes, price, prefix)
	return Message{Subject: subject, Body: body + signature}
}

// PickupAddress formats a producer address, leaving out an empty zipcode
func PickupAddress(street, number, zipcode, city string) string {
	if zipcode != "" {
		return fmt.Sprintf("%s %s, %s %s", street, number, zipcode, city)
	}
	return fmt.Sprintf("%s %s, %s", street, number, city)
}
